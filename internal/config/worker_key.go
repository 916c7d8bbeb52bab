package config

type WorkerKeyStruct struct {
	EvaluateAnswersQueue string
}

var WorkerKey = &WorkerKeyStruct{
	EvaluateAnswersQueue: "evaluate_answers_queue",
}
