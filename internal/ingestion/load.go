package ingestion

import "sync"

// Load decodes every path on the worker pool and hands each decoded value to
// insert. Inserts are serialized, so insert may write to a plain map. A path
// that fails to decode contributes nothing and is listed in the report.
func Load[T any](w *AsyncWorker, paths []string, decode func(path string) (T, error), insert func(path string, v T)) (*Report, error) {
	jobs := make([]Job, 0, len(paths))
	for _, p := range paths {
		jobs = append(jobs, Job{Path: p})
	}

	var mu sync.Mutex
	return w.Run(jobs, func(job Job) error {
		v, err := decode(job.Path)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		insert(job.Path, v)
		return nil
	})
}
