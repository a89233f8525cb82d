package notification_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wimotos/backend/internal/domain/shared"
)

type sentMessage struct {
	To      []string
	Title   string
	Body    string
	DataURI string
}

// fakeSender records messages and fails those whose body contains a scripted substring
type fakeSender struct {
	mu       sync.Mutex
	sent     []sentMessage
	attempts int
	failOn   []string
	failAll  bool
}

var errGateway = shared.NewKindError(shared.KindDeliveryFailure, "GATEWAY_DOWN", "blibsend (502): bad gateway")

func (f *fakeSender) shouldFail(body string) bool {
	if f.failAll {
		return true
	}
	for _, s := range f.failOn {
		if strings.Contains(body, s) {
			return true
		}
	}
	return false
}

func (f *fakeSender) SendText(_ context.Context, to []string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.shouldFail(body) {
		return errGateway
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return nil
}

func (f *fakeSender) SendMedia(_ context.Context, to []string, title, caption, dataURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.shouldFail(caption) {
		return errGateway
	}
	f.sent = append(f.sent, sentMessage{To: to, Title: title, Body: caption, DataURI: dataURI})
	return nil
}

func (f *fakeSender) bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Body
	}
	return out
}

type fakeTranscoder struct{}

func (fakeTranscoder) ToDataURI(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image")
	}
	return "data:image/jpeg;base64,AAAA", nil
}

type recordedSleeps struct {
	calls []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return ctx.Err()
}

type countingObserver struct {
	ok, failed map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{ok: map[string]int{}, failed: map[string]int{}}
}

func (o *countingObserver) ObserveDelivery(_ context.Context, kind string, err error) {
	if err != nil {
		o.failed[kind]++
		return
	}
	o.ok[kind]++
}
