package ingestion

import (
	"sync"

	"github.com/ThiagoRGoveia/treatment-records/internal/models"
)

// Channels are shared by the dispatcher, the workers and the error worker of
// one run.
type Channels struct {
	Jobs   chan Job
	Errors chan models.AppError
}

type WaitGroups struct {
	WorkerWg *sync.WaitGroup
	MainWg   *sync.WaitGroup
}

type Environment struct {
	Channels      *Channels
	WaitGroups    *WaitGroups
	FileErrorsMap *models.FileErrorMap
}

func (e Environment) GetValues() (*Channels, *WaitGroups, *models.FileErrorMap) {
	return e.Channels, e.WaitGroups, e.FileErrorsMap
}

type ISetup interface {
	build(numWorkers int) Environment
}

type Setup struct{}

// Instantiate the channels and data structures of one run. The jobs queue
// holds as many items as there are workers, so the dispatcher blocks once
// every worker is busy and the queue is full.
func (h Setup) build(numWorkers int) Environment {
	if numWorkers < 1 {
		numWorkers = 1
	}
	var workerWg, mainWg sync.WaitGroup
	return Environment{
		Channels: &Channels{
			Jobs:   make(chan Job, numWorkers),
			Errors: make(chan models.AppError, numWorkers),
		},
		WaitGroups:    &WaitGroups{WorkerWg: &workerWg, MainWg: &mainWg},
		FileErrorsMap: models.NewFileErrorMap(),
	}
}
