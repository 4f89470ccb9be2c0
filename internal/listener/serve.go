package listener

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
)

// acceptLoop hands every connection accepted on ln to handle until ctx is
// canceled. Handlers get their own context, canceled once the loop stops
// accepting, and are waited for before acceptLoop returns.
func acceptLoop(ctx context.Context, ln net.Listener, handle func(context.Context, net.Conn)) error {
	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				cancelConns()
				wg.Wait()
				return err
			}
			slog.ErrorContext(ctx, "accepting connection", "addr", ln.Addr(), "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			handle(connCtx, conn)
		}()
	}
}
