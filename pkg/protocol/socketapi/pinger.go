package socketapi

import (
	"time"

	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/log"
)

// Pinger sends a ping every tick until the connection context ends. A failed
// ping tears the connection down; the read loop then observes the closed
// socket and runs cleanup.
func (a *A) Pinger(ctx context.T, ticker *time.Ticker, cancel context.F) {
	defer func() {
		cancel()
		ticker.Stop()
		_ = a.Listener.Close()
	}()
	var err error
	for {
		select {
		case <-ticker.C:
			if err = a.Listener.Ping(time.Now().Add(DefaultPingWait)); err != nil {
				log.D.F(
					"%s: ping failed, closing: %v", a.Listener.RealRemote(), err,
				)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
