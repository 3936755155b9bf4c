package clock

import "time"

// SystemClock システム時計によるClock実装
type SystemClock struct {
	now func() time.Time
}

// NewSystemClock 新しいSystemClockを作成
func NewSystemClock() *SystemClock {
	return &SystemClock{now: time.Now}
}

// CurrentTime 現在時刻（UNIX秒）を返す
func (c *SystemClock) CurrentTime() uint64 {
	sec := c.now().Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
