package cases

// SurveyQuestions are the Likert-scale questions (rated 1-5) presented after
// each completed case. Question indexes in survey responses refer to this
// slice.
var SurveyQuestions = []string{
	"I would work up pulmonary embolism",
	"My colleagues would work up pulmonary embolism",
	"Question 3 placeholder",
	"Question 4 placeholder",
}

// LikertScale maps ratings to their labels, for reference in exports and UI.
var LikertScale = map[int]string{
	1: "Zero",
	2: "Low",
	3: "Neutral",
	4: "Moderate",
	5: "High",
}
