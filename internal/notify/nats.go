package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrNoWorker is returned when no mail worker is subscribed to the subject.
	ErrNoWorker = errors.New("notify: no mail worker available")
	// ErrTimeout is returned when the worker does not answer in time.
	ErrTimeout = errors.New("notify: mail request timed out")
)

// MailJob is the msgpack payload requested on the mail subject.
type MailJob struct {
	ID    string `msgpack:"id"`
	Email Email  `msgpack:"email"`
}

// MailResult is the worker's msgpack reply.
type MailResult struct {
	ID    string `msgpack:"id"`
	OK    bool   `msgpack:"ok"`
	Error string `msgpack:"error,omitempty"`
}

// Requester is the request side of a NATS connection. *nats.Conn satisfies it.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// NATSSender hands emails to a mail worker over NATS request/reply and waits for delivery.
type NATSSender struct {
	req     Requester
	subject string
	timeout time.Duration
}

// NewNATSSender returns a Sender that requests on subject. timeout <= 0 uses 10s.
func NewNATSSender(req Requester, subject string, timeout time.Duration) *NATSSender {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &NATSSender{req: req, subject: subject, timeout: timeout}
}

// Send publishes e as a MailJob and returns the worker's verdict.
func (s *NATSSender) Send(ctx context.Context, e Email) error {
	job := MailJob{ID: uuid.New().String(), Email: e}
	payload, err := msgpack.Marshal(&job)
	if err != nil {
		return fmt.Errorf("marshal mail job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	msg, err := s.req.RequestWithContext(ctx, s.subject, payload)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			return ErrNoWorker
		}
		if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("mail request: %w", err)
	}

	var res MailResult
	if err := msgpack.Unmarshal(msg.Data, &res); err != nil {
		return fmt.Errorf("unmarshal mail result: %w", err)
	}
	if !res.OK {
		return fmt.Errorf("mail worker: %s", res.Error)
	}
	return nil
}

// Connect dials NATS with reconnect handling logged through log.
func Connect(url string, log logrus.FieldLogger) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name("company-registration"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(1 * time.Second),
		nats.ReconnectJitter(500*time.Millisecond, 2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("nats reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("nats connection closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.WithError(err).Error("nats error")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.WithField("url", nc.ConnectedUrl()).Info("connected to nats")
	return nc, nil
}

// ConnChecker reports NATS connectivity for readiness probes.
type ConnChecker struct {
	Conn *nats.Conn
}

func (c ConnChecker) Name() string { return "nats" }

func (c ConnChecker) Check(ctx context.Context) error {
	if c.Conn == nil {
		return errors.New("nats: no connection")
	}
	if st := c.Conn.Status(); st != nats.CONNECTED {
		return fmt.Errorf("nats: status %s", st)
	}
	return nil
}

// Worker consumes MailJobs and delivers them through a Sender.
type Worker struct {
	sender  Sender
	log     logrus.FieldLogger
	timeout time.Duration
}

// NewWorker returns a Worker. timeout bounds each delivery; <= 0 uses 10s.
func NewWorker(sender Sender, log logrus.FieldLogger, timeout time.Duration) *Worker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Worker{sender: sender, log: log, timeout: timeout}
}

// Subscribe registers the worker on subject within queue group.
func (w *Worker) Subscribe(nc *nats.Conn, subject, queue string) (*nats.Subscription, error) {
	return nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		reply := w.Handle(context.Background(), msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			w.log.WithError(err).Warn("mail worker: respond failed")
		}
	})
}

// Handle decodes one job, delivers it, and returns the encoded MailResult.
func (w *Worker) Handle(ctx context.Context, data []byte) []byte {
	var job MailJob
	res := MailResult{}
	if err := msgpack.Unmarshal(data, &job); err != nil {
		res.Error = "malformed mail job"
		w.log.WithError(err).Warn("mail worker: malformed job")
		return encodeResult(res)
	}
	res.ID = job.ID

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.sender.Send(ctx, job.Email); err != nil {
		res.Error = err.Error()
		w.log.WithError(err).WithField("job_id", job.ID).Warn("mail worker: delivery failed")
		return encodeResult(res)
	}
	res.OK = true
	w.log.WithField("job_id", job.ID).Debug("mail worker: delivered")
	return encodeResult(res)
}

func encodeResult(res MailResult) []byte {
	b, err := msgpack.Marshal(&res)
	if err != nil {
		// MailResult has only plain fields; Marshal cannot fail in practice.
		return nil
	}
	return b
}
