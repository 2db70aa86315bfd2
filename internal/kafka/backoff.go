package kafka

import (
	"context"
	"math/rand"
	"time"
)

// backoff — экспоненциальная пауза с equal jitter: половина фиксирована, половина случайна.
type backoff struct {
	initial time.Duration
	max     time.Duration
	cur     time.Duration
	rnd     *rand.Rand
}

func newBackoff(initial, ceiling time.Duration, rnd *rand.Rand) *backoff {
	return &backoff{initial: initial, max: ceiling, cur: initial, rnd: rnd}
}

// next — текущая пауза с джиттером; следующая будет вдвое длиннее (не больше max).
func (b *backoff) next() time.Duration {
	d := b.jitter(b.cur)
	b.cur *= 2
	if b.cur > b.max {
		b.cur = b.max
	}
	return d
}

func (b *backoff) reset() { b.cur = b.initial }

func (b *backoff) jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(b.rnd.Int63n(int64(d-half)+1))
}

// sleep — false, если контекст отменён раньше.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
