package cli

import (
	"context"

	"github.com/rs/zerolog"

	"ib-trader/internal/broker"
	"ib-trader/internal/decoder"
	"ib-trader/internal/store"
)

// session is a connected SyncClient plus the optional recorder in front of the
// downstream wrapper.
type session struct {
	sync     *broker.SyncClient
	store    *store.Store
	recorder *store.Recorder
	logger   zerolog.Logger
}

// connect builds the wrapper chain (sync facade -> recorder -> downstream) and
// connects. A nil downstream logs every callback.
func (a *App) connect(ctx context.Context, downstream decoder.Wrapper) (*session, error) {
	if downstream == nil {
		downstream = broker.NewLoggingWrapper(a.Logger)
	}

	s := &session{logger: a.Logger}
	if a.Config.Storage.Enabled {
		st, err := store.NewStore(a.Config.Storage.DBPath)
		if err != nil {
			return nil, err
		}
		s.store = st
		s.recorder = store.NewRecorder(st, downstream, a.Logger)
		downstream = s.recorder
	}

	s.sync = broker.NewSyncClient(a.Config.BrokerConfig(), downstream, a.Logger)

	ctx, cancel := context.WithTimeout(ctx, a.Config.Connection.ConnectTimeout)
	defer cancel()
	if err := s.sync.Connect(ctx); err != nil {
		s.closeStore()
		return nil, err
	}
	return s, nil
}

func (s *session) client() *broker.Client {
	return s.sync.Client()
}

// Close disconnects and closes the store.
func (s *session) Close() {
	if err := s.sync.Disconnect(); err != nil {
		s.logger.Debug().Err(err).Msg("Disconnect failed")
	}
	s.closeStore()
}

func (s *session) closeStore() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close store")
		}
	}
}
