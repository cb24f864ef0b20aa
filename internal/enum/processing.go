package enum

type ProcessingStatus string

const (
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusError      ProcessingStatus = "error"
)

func (s ProcessingStatus) String() string {
	return string(s)
}

type TestStatus string

const (
	TestStatusSuccess TestStatus = "success"
	TestStatusError   TestStatus = "error"
)

func (s TestStatus) String() string {
	return string(s)
}
