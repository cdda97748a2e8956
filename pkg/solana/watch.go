package solana

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/internal/metrics"
	"github.com/propellerswap/propeller/pkg/chain"
)

// LogStream delivers log notifications for transactions mentioning a program.
type LogStream interface {
	Recv(ctx context.Context) (LogEvent, error)
	Close()
}

// LogDialer opens a log stream for transactions mentioning program.
type LogDialer func(ctx context.Context, program solana.PublicKey) (LogStream, error)

// WebsocketDialer subscribes to program logs over the RPC websocket endpoint.
// Each stream owns its own connection.
func WebsocketDialer(url string, commitment rpc.CommitmentType) LogDialer {
	return func(ctx context.Context, program solana.PublicKey) (LogStream, error) {
		client, err := ws.Connect(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ledger websocket: %w", err)
		}
		sub, err := client.LogsSubscribeMentions(program, commitment)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to subscribe to program logs: %w", err)
		}
		return &wsLogStream{sub: sub, closeConn: client.Close}, nil
	}
}

// logSubscription is the part of ws.LogSubscription the stream uses.
type logSubscription interface {
	Recv(ctx context.Context) (*ws.LogResult, error)
	Unsubscribe()
}

type wsLogStream struct {
	sub       logSubscription
	closeConn func()
	closeOnce sync.Once
}

// Recv waits for the next notification. Cancelling ctx closes the stream so
// a blocked read always returns.
func (s *wsLogStream) Recv(ctx context.Context) (LogEvent, error) {
	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	res, err := s.sub.Recv(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return LogEvent{}, ctxErr
	}
	if err != nil {
		return LogEvent{}, err
	}
	return LogEvent{
		Signature: res.Value.Signature.String(),
		Failed:    res.Value.Err != nil,
		Logs:      res.Value.Logs,
	}, nil
}

func (s *wsLogStream) Close() {
	s.closeOnce.Do(func() {
		s.sub.Unsubscribe()
		if s.closeConn != nil {
			s.closeConn()
		}
	})
}

// watchMemo consumes stream until a final memo match fires sub or sub is
// released. A broken stream is re-dialed after retryDelay.
func (a *Adapter) watchMemo(sub *chain.Subscription, stream LogStream) {
	ctx := sub.Context()
	logger := a.logger.With(zap.String("memo", sub.Memo.Hex()), zap.Uint64("subscription", sub.ID))
	logger.Debug("Starting log watcher")

	defer func() {
		if stream != nil {
			stream.Close()
		}
		logger.Debug("Log watcher stopped")
	}()

	for {
		if stream == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.retryDelay):
			}
			var err error
			if stream, err = a.dial(ctx, a.programs.Routing); err != nil {
				logger.Warn("Failed to resubscribe to program logs", zap.Error(err))
				stream = nil
				continue
			}
		}

		ev, err := stream.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			logger.Warn("Program log stream failed", zap.Error(err))
			stream.Close()
			stream = nil
			continue
		}

		switch classify(ev, sub.Memo, a.markers) {
		case finalMatch:
			metrics.EventsDetected.WithLabelValues(a.id.String(), "true").Inc()
			sub.Fire(ev.Signature)
			return
		case interimMatch:
			metrics.EventsDetected.WithLabelValues(a.id.String(), "false").Inc()
			logger.Info("Intermediate routing transaction observed", zap.String("signature", ev.Signature))
		}
	}
}
