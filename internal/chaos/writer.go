package chaos

import (
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Config controls how writes are broken up on the way to the peer.
type Config struct {
	Seed     int64
	MaxChunk int
	MaxDelay time.Duration
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.MaxChunk <= 0 {
		return fmt.Errorf("maxChunk must be >= 1")
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("maxDelay must be >= 0")
	}
	return nil
}

// Writer splits every Write into randomly sized chunks with random pauses in between, the
// way a congested network delivers a byte stream. Byte order is preserved.
type Writer struct {
	w     io.Writer
	cfg   Config
	rng   *rand.Rand
	sleep func(time.Duration)
	calls int
}

// NewWriter wraps w.
func NewWriter(w io.Writer, cfg Config) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Writer{
		w:     w,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		sleep: time.Sleep,
	}, nil
}

// Write forwards p in chunks of 1..MaxChunk bytes.
func (c *Writer) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n := 1 + c.rng.Intn(c.cfg.MaxChunk)
		if rest := len(p) - written; n > rest {
			n = rest
		}
		m, err := c.w.Write(p[written : written+n])
		written += m
		c.calls++
		if err != nil {
			return written, err
		}
		if written < len(p) {
			c.pause()
		}
	}
	return written, nil
}

// Chunks returns how many underlying writes have been issued.
func (c *Writer) Chunks() int {
	return c.calls
}

func (c *Writer) pause() {
	if c.cfg.MaxDelay <= 0 {
		return
	}
	if d := time.Duration(c.rng.Int63n(c.cfg.MaxDelay.Nanoseconds() + 1)); d > 0 {
		c.sleep(d)
	}
}
