package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"company-registration/backend/internal/response"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker is an extra readiness dependency, e.g. the NATS connection.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Server serves liveness and readiness for load balancers and orchestrators.
type Server struct {
	pinger   Pinger
	checkers []Checker
	log      logrus.FieldLogger
}

// NewServer returns a health Server. pinger may be nil (in-memory repository); checkers are optional.
func NewServer(pinger Pinger, log logrus.FieldLogger, checkers ...Checker) *Server {
	return &Server{pinger: pinger, checkers: checkers, log: log}
}

// Live always reports the process as up.
func (s *Server) Live(w http.ResponseWriter, r *http.Request) {
	response.OK(w, "ok", map[string]string{"status": "SERVING"})
}

// Ready pings the database and every checker. Any failure yields 503 NOT_SERVING;
// error detail goes to the log, not the client.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var failed []string
	if s.pinger != nil {
		if err := s.pinger.PingContext(ctx); err != nil {
			s.log.WithError(err).Warn("readiness: database ping failed")
			failed = append(failed, "database")
		}
	}
	for _, c := range s.checkers {
		if err := c.Check(ctx); err != nil {
			s.log.WithError(err).WithField("dependency", c.Name()).Warn("readiness: check failed")
			failed = append(failed, c.Name())
		}
	}
	if len(failed) > 0 {
		response.JSON(w, http.StatusServiceUnavailable, response.Envelope{
			Success: false,
			Message: "not ready",
			Data:    map[string]interface{}{"status": "NOT_SERVING", "failed": failed},
		})
		return
	}
	response.OK(w, "ready", map[string]string{"status": "SERVING"})
}
