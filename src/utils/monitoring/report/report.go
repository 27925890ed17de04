package report

type Report struct {
	Allocator *AllocatorReport `json:"allocator,omitempty"`
	Transfer  *TransferReport  `json:"transfer,omitempty"`
	Sweeper   *SweeperReport   `json:"sweeper,omitempty"`
	Notifier  *NotifierReport  `json:"notifier,omitempty"`
}
