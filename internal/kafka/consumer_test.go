package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/pos_terminal/internal/kafka/mocks"
	"github.com/Gunvolt24/pos_terminal/pkg/validate"
)

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

var testReaderConfig = kafka.ReaderConfig{Topic: "inventory", GroupID: "pos", Brokers: []string{"b:9092"}}

func newTestConsumer(r reader, a stockApplier) *Consumer {
	return &Consumer{
		reader:         r,
		applier:        a,
		log:            nopLogger{},
		processTimeout: 30 * time.Millisecond,
		fetchBackoff:   newBackoff(5*time.Millisecond, 10*time.Millisecond, rand.New(rand.NewSource(1))),
		applyBackoff:   newBackoff(time.Millisecond, 2*time.Millisecond, rand.New(rand.NewSource(2))),
	}
}

// blockUntilCancel — второй FetchMessage ждёт отмены контекста.
func blockUntilCancel(r *mocks.Mockreader) {
	r.EXPECT().FetchMessage(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, error) {
			<-ctx.Done()
			return kafka.Message{}, ctx.Err()
		})
}

// runBriefly — запускает Run, даёт ему поработать и останавливает; ждёт context.Canceled.
func runBriefly(t *testing.T, c *Consumer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for Run to stop")
	}
}

func TestRun_AppliedEventCommitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	a := mocks.NewMockstockApplier(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{Offset: 1, Value: []byte(`{"idProducto":1,"cantidadDisponible":3}`)}, nil)
	a.EXPECT().ApplyStockUpdate(gomock.Any(), []byte(`{"idProducto":1,"cantidadDisponible":3}`)).Return(nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	blockUntilCancel(r)

	runBriefly(t, newTestConsumer(r, a))
}

func TestRun_InvalidEventCommittedAndSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	a := mocks.NewMockstockApplier(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{Offset: 7, Value: []byte("bad")}, nil)
	a.EXPECT().ApplyStockUpdate(gomock.Any(), []byte("bad")).
		Return(fmt.Errorf("%w: invalid json", validate.ErrInvalidStockUpdate))
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	blockUntilCancel(r)

	runBriefly(t, newTestConsumer(r, a))
}

// Временная ошибка: CommitMessages не ожидается, лишний вызов уронит тест.
// Пока событие не применено, оффсет не коммитится и следующее событие не читается.
func TestRun_TemporaryFailureNotCommitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	a := mocks.NewMockstockApplier(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{Offset: 2, Value: []byte("x")}, nil).Times(1)
	a.EXPECT().ApplyStockUpdate(gomock.Any(), []byte("x")).Return(errors.New("cache unavailable")).MinTimes(2)

	runBriefly(t, newTestConsumer(r, a))
}

func TestRun_TemporaryFailureRetriedThenCommitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	a := mocks.NewMockstockApplier(ctrl)

	msg := kafka.Message{Offset: 3, Value: []byte(`{"idProducto":1,"cantidadDisponible":3}`)}
	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil)
	gomock.InOrder(
		a.EXPECT().ApplyStockUpdate(gomock.Any(), msg.Value).Return(errors.New("cache unavailable")).Times(2),
		a.EXPECT().ApplyStockUpdate(gomock.Any(), msg.Value).Return(nil),
	)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
			if len(msgs) != 1 || msgs[0].Offset != 3 {
				t.Errorf("committed %+v, want offset 3", msgs)
			}
			return nil
		})
	blockUntilCancel(r)

	runBriefly(t, newTestConsumer(r, a))
}

func TestRun_ProcessTimeoutApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	a := mocks.NewMockstockApplier(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{Offset: 4, Value: []byte("slow")}, nil)
	a.EXPECT().ApplyStockUpdate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []byte) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("processing context must carry a deadline")
			}
			<-ctx.Done()
			return ctx.Err()
		}).MinTimes(1)

	c := newTestConsumer(r, a)
	c.processTimeout = 5 * time.Millisecond
	runBriefly(t, c)
}

func TestRun_FetchErrorRetriedUntilDeadline(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	a := mocks.NewMockstockApplier(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, errors.New("broker error")).MinTimes(2)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	if err := newTestConsumer(r, a).Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded, got %v", err)
	}
}

func TestRun_CommitErrorOnlyWarns(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	a := mocks.NewMockstockApplier(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{Offset: 3, Value: []byte("ok")}, nil)
	a.EXPECT().ApplyStockUpdate(gomock.Any(), []byte("ok")).Return(nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(errors.New("temporary"))
	blockUntilCancel(r)

	runBriefly(t, newTestConsumer(r, a))
}

func TestClose_Once(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	r.EXPECT().Close().Return(nil).Times(1)

	c := newTestConsumer(r, mocks.NewMockstockApplier(ctrl))
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestBackoff_GrowsAndResets(t *testing.T) {
	b := newBackoff(10*time.Millisecond, 40*time.Millisecond, rand.New(rand.NewSource(1)))

	for i, ceil := range []time.Duration{10, 20, 40, 40} {
		d := b.next()
		ceil *= time.Millisecond
		if d < ceil/2 || d > ceil {
			t.Fatalf("step %d: pause %s outside [%s, %s]", i, d, ceil/2, ceil)
		}
	}
	b.reset()
	if d := b.next(); d > 10*time.Millisecond {
		t.Fatalf("after reset pause = %s", d)
	}
}
