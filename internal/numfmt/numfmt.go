// Package numfmt is an allocation-free unsigned/signed-to-decimal
// formatter, used for the status code and Content-Length of response
// headers.
package numfmt

// digitPairs holds "00".."99" so two decimal digits can be appended
// per loop iteration instead of one.
const digitPairs = "00010203040506070809" +
	"10111213141516171819" +
	"20212223242526272829" +
	"30313233343536373839" +
	"40414243444546474849" +
	"50515253545556575859" +
	"60616263646566676869" +
	"70717273747576777879" +
	"80818283848586878889" +
	"90919293949596979899"

// AppendUint appends the decimal representation of u to dst and
// returns the extended slice, writing two digits at a time
// right-to-left via digitPairs.
func AppendUint(dst []byte, u uint64) []byte {
	if u == 0 {
		return append(dst, '0')
	}

	var tmp [20]byte
	i := len(tmp)

	for u >= 100 {
		pair := (u % 100) * 2
		u /= 100
		i -= 2
		tmp[i] = digitPairs[pair]
		tmp[i+1] = digitPairs[pair+1]
	}

	if u < 10 {
		i--
		tmp[i] = byte('0' + u)
	} else {
		pair := u * 2
		i -= 2
		tmp[i] = digitPairs[pair]
		tmp[i+1] = digitPairs[pair+1]
	}

	return append(dst, tmp[i:]...)
}

// AppendInt appends the decimal representation of i, prefixing '-'
// for negative values.
func AppendInt(dst []byte, i int64) []byte {
	if i < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-i))
	}
	return AppendUint(dst, uint64(i))
}

// FormatUint is the non-appending convenience form.
func FormatUint(u uint64) string {
	return string(AppendUint(nil, u))
}

// FormatInt is the non-appending convenience form.
func FormatInt(i int64) string {
	return string(AppendInt(nil, i))
}
