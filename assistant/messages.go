package assistant

// 固定回复
const (
	Greeting = "Hello, I'm a SQL assistant. Ask me anything about your database."

	ReplyGreeting = "Hey! How's it going?"
	ReplyThanks   = "You're welcome! Let me know if you have any more questions."
	ReplyGoodbye  = "Goodbye! Catch you later."

	ReplyCities = "The name of the available cities in the database are pune, solapur, chennai, erode, jabalpur, thanjavur, and tiruchirappalli."

	ReplyExamples = `The possible questions you can ask are:
- What was the total property tax collection in 2013-14 residential for Aundh in Pune city?
- What was the property efficiency for the year 2015-16 commercial for Chennai?
- What was the collection gap for the year 2016-17 residential for Thanjavur?
- What was the collection gap for Solapur from 2013-18 residential?
- What will be the tax demand for the year 2025 in Pune for residential?
- What will be the property efficiency (residential) for the year 2019 in Pune?`

	ReplyNoPreviousQuery = "I couldn't find a previous query to generate SQL for."
	ReplyPrediction      = "No SQL query was generated for the last answer because it was a model-based prediction."
	ReplyNoBreakdown     = "I couldn't find a previous query to provide a breakdown."
	ReplyClarify         = "Please specify whether you want the tax collection or demand prediction."
	ReplyNotFound        = "Sorry, I couldn't find anything related to that. Please check your input."
	ReplyUnavailable     = "Sorry, I couldn't process that right now. Please try again."

	LowConfidenceNote = " (low confidence: predicted demand is zero)"
)

// 问题匹配用的短语表，全部小写
var (
	greetingPhrases = []string{"hi", "hii", "hello", "how are you?", "hey", "hey there"}
	thanksPhrases   = []string{"thanks", "thank you", "thx", "appreciate it", "ty", "okay thanks", "thnx", "okay thank you"}
	goodbyePhrases  = []string{"bye", "goodbye", "okay bye", "see you"}

	cityListPhrases = []string{
		"what are the names of the available cities in the database?",
		"what are the available cities in the database?",
		"what are the names of the cities in the database?",
		"what are the names of the tables in the database?",
		"what are the cities in the database?",
		"which cities are available",
	}
	exampleQuestionPhrases = []string{
		"what are the possible questions i can ask?",
		"what are the possible questions i can ask to the database?",
		"what type of questions can i ask?",
		"what type of questions can i ask to the database?",
		"what questions can i ask to the database?",
		"what questions can i ask",
	}

	showQueryPhrases = []string{
		"give me the sql query", "give me the query", "give me sql", "provide sql",
		"show sql", "fetch sql", "generate sql", "sql query", "give me query",
	}
	breakdownPhrases = []string{"breakdown", "detailed explanation", "explanation", "brief"}

	// 问题中出现这些词时按计数处理
	countPhrases = []string{"how many", "number of", "count of"}

	// 答案中出现这些词时不追加 " crore"
	unitlessMarkers = []string{"efficiency", "%", "percent", "count", "number of", "rows", "crore"}
)

// predictionMarker 预测回答中固定出现的词
const predictionMarker = "predicted"
