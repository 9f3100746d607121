package crawler

import (
	"time"
)

// Debounce turns a burst of change notifications into a single wake-up sent
// once inCh has been quiet for delay. Wake-ups never block: if one is already
// pending, the new one is merged into it.
func Debounce(inCh <-chan string, delay time.Duration) <-chan struct{} {
	outCh := make(chan struct{}, 1)

	go func() {
		defer close(outCh)

		timer := time.NewTimer(delay)
		timer.Stop()
		var fire <-chan time.Time

		for {
			select {
			case _, ok := <-inCh:
				if !ok {
					return
				}
				timer.Reset(delay)
				fire = timer.C

			case <-fire:
				fire = nil
				select {
				case outCh <- struct{}{}:
				default:
				}
			}
		}
	}()

	return outCh
}
