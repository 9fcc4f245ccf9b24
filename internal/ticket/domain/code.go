package domain

import (
	"crypto/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

const codeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	codeMu     sync.Mutex
	lastMillis int64
)

// NewCode returns a ticket code of the form TKT-<base36 millis>-<6 random
// base36 chars>. The timestamp component is forced strictly increasing
// per process, so codes never collide even when generated in a tight loop.
func NewCode(now time.Time) string {
	codeMu.Lock()
	ms := now.UnixMilli()
	if ms <= lastMillis {
		ms = lastMillis + 1
	}
	lastMillis = ms
	codeMu.Unlock()

	ts := strings.ToUpper(strconv.FormatInt(ms, 36))
	return "TKT-" + ts + "-" + randBase36(6)
}

func randBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(out)
}
