package corpus

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/formgate/formgate-cli/internal/logger"
)

// debounceWindow batches a burst of filesystem events into one rebuild.
const debounceWindow = 2 * time.Second

// Watcher triggers a callback when the policy corpus directory changes.
// Events are debounced so a multi-file corpus update rebuilds once.
type Watcher struct {
	dir      string
	onChange func(context.Context)
}

// NewWatcher creates a watcher over the corpus directory.
func NewWatcher(dir string, onChange func(context.Context)) *Watcher {
	return &Watcher{
		dir:      dir,
		onChange: onChange,
	}
}

// Watch blocks until ctx is cancelled, invoking the callback after each
// debounced batch of create/write/remove/rename events.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	logger.Info("Watching corpus directory %s", w.dir)

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Corpus change: %s %s", event.Op, event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Corpus watcher error: %v", err)

		case <-fire:
			w.onChange(ctx)
		}
	}
}
