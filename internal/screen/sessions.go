package screen

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hcms-console/hcms-console/internal/session"
	"github.com/hcms-console/hcms-console/internal/shared"
)

// StoreOptions yields per-request store options, typically clear hooks that
// need the request's address.
type StoreOptions func(r *http.Request) []session.Option

type responseWriterWithCommit struct {
	http.ResponseWriter
	sess          *shared.Session
	manager       *shared.SessionManager
	logger        *slog.Logger
	ctx           context.Context
	req           *http.Request
	headerWritten bool
}

func (w *responseWriterWithCommit) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		if err := w.manager.Commit(w.ctx, w.ResponseWriter, w.req, w.sess); err != nil {
			w.logger.Error("commit session", slog.Any("error", err))
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWithCommit) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// Sessions loads the browser's cookie session, restores a credential store
// persisted inside it and places both on the request context. The cookie
// session is committed before the first byte of the response.
func Sessions(manager *shared.SessionManager, logger *slog.Logger, opts StoreOptions) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, err := manager.Load(ctx, r)
			if err != nil {
				logger.Error("failed to load session", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			ctx = shared.ContextWithSession(ctx, sess)

			storeOpts := []session.Option{session.WithLogger(logger)}
			if opts != nil {
				storeOpts = append(storeOpts, opts(r)...)
			}
			store := session.NewStore(session.ValuePersister{Bag: sess}, storeOpts...)
			if err := store.Restore(ctx); err != nil {
				logger.Warn("restore credential", slog.Any("error", err))
			}
			ctx = session.NewContext(ctx, store)

			req := r.WithContext(ctx)
			wrapped := &responseWriterWithCommit{
				ResponseWriter: w,
				sess:           sess,
				manager:        manager,
				logger:         logger,
				ctx:            ctx,
				req:            req,
			}
			next.ServeHTTP(wrapped, req)
			if !wrapped.headerWritten {
				wrapped.WriteHeader(http.StatusOK)
			}
		})
	}
}
