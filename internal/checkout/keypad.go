package checkout

import "strconv"

// Keypad is the string-based numeric input accumulator behind the on-screen
// number pads (tendered amount, PIN, discount percent). Digits append,
// Backspace drops the last digit, Clear empties the buffer. Non-digit input
// is ignored. A limit of 0 means unbounded.
type Keypad struct {
	buf   string
	limit int
}

// Press appends one digit to the buffer.
func (k *Keypad) Press(digit rune) {
	if digit < '0' || digit > '9' {
		return
	}
	if k.limit > 0 && len(k.buf) >= k.limit {
		return
	}
	k.buf += string(digit)
}

// Backspace removes the last digit.
func (k *Keypad) Backspace() {
	if len(k.buf) > 0 {
		k.buf = k.buf[:len(k.buf)-1]
	}
}

// Clear empties the buffer.
func (k *Keypad) Clear() {
	k.buf = ""
}

// Value returns the raw accumulated string.
func (k *Keypad) Value() string {
	return k.buf
}

// Amount interprets the buffer as a whole number of currency units. An empty
// buffer reads as zero.
func (k *Keypad) Amount() float64 {
	if k.buf == "" {
		return 0
	}
	v, err := strconv.ParseFloat(k.buf, 64)
	if err != nil {
		return 0
	}
	return v
}
