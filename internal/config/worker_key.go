package config

type WorkerKeyStruct struct {
	ResponseRetryQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ResponseRetryQueue: "response_retry_queue",
}
