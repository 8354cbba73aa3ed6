package ingestion

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ThiagoRGoveia/treatment-records/internal/models"
)

const defaultMaxErrorsPerPath = 100

type Runner[T any] struct {
	Run T
}

// Job is one file to process. Target is the destination path for jobs that
// produce a file, such as copies.
type Job struct {
	Path   string
	Target string
}

// Handler processes one job. A returned error is recorded against the job's
// path and does not stop the batch.
type Handler func(job Job) error

// Progress is called once per processed job, from the worker that processed
// it, so implementations must be safe for concurrent use.
type Progress func(done, total int)

type AsyncWorkerConfig struct {
	NumWorkers       int
	MaxErrorsPerPath int
}

// Worker defines the interface for asynchronous processing tasks.
type Worker interface {
	WithChannels(channels *Channels) Worker
	WithWaitGroups(waitGroups *WaitGroups) Worker
	SetupErrorWorker() (Runner[func(*models.FileErrorMap)], *sync.WaitGroup, error)
	SetupWorkers(numberOfWorkers int) (Runner[func(Handler)], *sync.WaitGroup, error)
	SetupJobDispatcherWorker(jobs []Job) (Runner[func()], *sync.WaitGroup, error)
}

type AsyncWorker struct {
	config     AsyncWorkerConfig
	logger     *slog.Logger
	setup      ISetup
	progress   Progress
	channels   *Channels
	waitGroups *WaitGroups

	total     int
	done      atomic.Int64
	succeeded atomic.Int64
}

func NewAsyncWorker(cfg AsyncWorkerConfig, logger *slog.Logger) *AsyncWorker {
	if cfg.NumWorkers < 1 {
		cfg.NumWorkers = 1
	}
	if cfg.MaxErrorsPerPath < 1 {
		cfg.MaxErrorsPerPath = defaultMaxErrorsPerPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncWorker{
		config: cfg,
		logger: logger,
		setup:  Setup{},
	}
}

func (w *AsyncWorker) NumWorkers() int { return w.config.NumWorkers }

// WithProgress returns a copy of w that reports progress to p.
func (w *AsyncWorker) WithProgress(p Progress) *AsyncWorker {
	return &AsyncWorker{
		config:   w.config,
		logger:   w.logger,
		setup:    w.setup,
		progress: p,
	}
}

func (w *AsyncWorker) WithChannels(channels *Channels) Worker {
	w.channels = channels
	return w
}

func (w *AsyncWorker) WithWaitGroups(waitGroups *WaitGroups) Worker {
	w.waitGroups = waitGroups
	return w
}

// Run processes every job with handle on the worker pool and blocks until all
// of them are done. The returned report lists every failure; a failing job
// never stops the others.
func (w *AsyncWorker) Run(jobs []Job, handle Handler) (*Report, error) {
	if handle == nil {
		return nil, errors.New("ingestion: nil handler")
	}
	run := w.WithProgress(w.progress)
	run.total = len(jobs)

	channels, waitGroups, fileErrorsMap := run.setup.build(w.config.NumWorkers).GetValues()
	run.WithChannels(channels).WithWaitGroups(waitGroups)

	errorWorkerRunner, mainWaitGroup, err := run.SetupErrorWorker()
	if err != nil {
		return nil, err
	}
	workersRunner, workerWaitGroup, err := run.SetupWorkers(w.config.NumWorkers)
	if err != nil {
		return nil, err
	}
	// Sharing MainWg with error worker
	dispatcherRunner, _, err := run.SetupJobDispatcherWorker(jobs)
	if err != nil {
		return nil, err
	}

	errorWorkerRunner.Run(fileErrorsMap)
	workersRunner.Run(handle)
	dispatcherRunner.Run()

	run.logger.Debug("Waiting for workers to finish...", "jobs", len(jobs), "workers", w.config.NumWorkers)
	workerWaitGroup.Wait()

	// Close the errors channel after all workers that can produce errors are done.
	close(channels.Errors)
	mainWaitGroup.Wait()

	return newReport(len(jobs), int(run.succeeded.Load()), fileErrorsMap), nil
}

func (w *AsyncWorker) ProcessWorker(workerID int, handle Handler) {
	defer w.waitGroups.WorkerWg.Done()
	for job := range w.channels.Jobs {
		w.logger.Debug("Worker started job", "worker", workerID, "path", job.Path)
		if err := w.safeHandle(handle, job); err != nil {
			w.channels.Errors <- models.AppError{Path: job.Path, Message: "Failed to process file", Err: err}
		} else {
			w.succeeded.Add(1)
		}
		done := w.done.Add(1)
		if w.progress != nil {
			w.progress(int(done), w.total)
		}
	}
}

func (w *AsyncWorker) safeHandle(handle Handler, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handle(job)
}

func (w *AsyncWorker) SetupWorkers(numberOfWorkers int) (Runner[func(Handler)], *sync.WaitGroup, error) {
	if numberOfWorkers < 1 {
		return Runner[func(Handler)]{}, nil, fmt.Errorf("ingestion: invalid number of workers %d", numberOfWorkers)
	}
	if w.channels == nil || w.waitGroups == nil {
		return Runner[func(Handler)]{}, nil, errors.New("ingestion: channels and wait groups must be set before starting workers")
	}
	return Runner[func(Handler)]{
		Run: func(handle Handler) {
			for i := 1; i <= numberOfWorkers; i++ {
				w.waitGroups.WorkerWg.Add(1)
				go w.ProcessWorker(i, handle)
			}
		},
	}, w.waitGroups.WorkerWg, nil
}

func (w *AsyncWorker) ErrorWorker(fileErrorsMap *models.FileErrorMap) {
	defer w.waitGroups.MainWg.Done()
	for appErr := range w.channels.Errors {
		w.logger.Warn("Caught error", "error", appErr.Error())
		fileErrorsMap.Mu.Lock()
		if len(fileErrorsMap.Errors[appErr.Path]) < w.config.MaxErrorsPerPath {
			fileErrorsMap.Errors[appErr.Path] = append(fileErrorsMap.Errors[appErr.Path], appErr)
		} else {
			w.logger.Warn("File has too many errors, skipping", "path", appErr.Path)
		}
		fileErrorsMap.Mu.Unlock()
	}
}

func (w *AsyncWorker) SetupErrorWorker() (Runner[func(*models.FileErrorMap)], *sync.WaitGroup, error) {
	if w.channels == nil || w.waitGroups == nil {
		return Runner[func(*models.FileErrorMap)]{}, nil, errors.New("ingestion: channels and wait groups must be set before starting the error worker")
	}
	return Runner[func(*models.FileErrorMap)]{
		Run: func(fileErrorsMap *models.FileErrorMap) {
			w.waitGroups.MainWg.Add(1)
			go w.ErrorWorker(fileErrorsMap)
		},
	}, w.waitGroups.MainWg, nil
}

// DispatchJobs feeds the jobs queue and closes it once every job is queued,
// which tells the workers to exit.
func (w *AsyncWorker) DispatchJobs(jobs []Job) {
	defer w.waitGroups.MainWg.Done()
	defer close(w.channels.Jobs)
	for _, job := range jobs {
		w.channels.Jobs <- job
	}
}

func (w *AsyncWorker) SetupJobDispatcherWorker(jobs []Job) (Runner[func()], *sync.WaitGroup, error) {
	if w.channels == nil || w.waitGroups == nil {
		return Runner[func()]{}, nil, errors.New("ingestion: channels and wait groups must be set before dispatching jobs")
	}
	return Runner[func()]{
		Run: func() {
			w.waitGroups.MainWg.Add(1)
			go w.DispatchJobs(jobs)
		},
	}, w.waitGroups.MainWg, nil
}

// Report summarizes one run.
type Report struct {
	Total     int
	Succeeded int
	Failures  []models.AppError
}

func newReport(total, succeeded int, fileErrorsMap *models.FileErrorMap) *Report {
	r := &Report{Total: total, Succeeded: succeeded}
	for _, errs := range fileErrorsMap.Errors {
		r.Failures = append(r.Failures, errs...)
	}
	sortFailures(r.Failures)
	return r
}

func sortFailures(failures []models.AppError) {
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
}

// Failed returns the number of jobs that did not succeed.
func (r *Report) Failed() int { return r.Total - r.Succeeded }

// Merge adds other's counts and failures to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Total += other.Total
	r.Succeeded += other.Succeeded
	r.Failures = append(r.Failures, other.Failures...)
	sortFailures(r.Failures)
}

// Err joins every failure, or returns nil when there are none.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for i := range r.Failures {
		errs = append(errs, &r.Failures[i])
	}
	return errors.Join(errs...)
}

// Failure builds the failure entry for path.
func Failure(path, message string, err error) models.AppError {
	return models.AppError{Path: path, Message: message, Err: err}
}
