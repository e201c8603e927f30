// Package socialno converts the leading digits of a Korean resident
// registration number into a birth date. Only the first seven digits are
// ever read; the rest of the number never reaches this package.
package socialno

// Century mapping for the 7th digit. Closed table: every digit 0-9 has an
// entry, no other rule exists.
var centuryByDigit = map[byte]string{
	'1': "19", '2': "19", '5': "19", '6': "19",
	'3': "20", '4': "20", '7': "20", '8': "20",
	'9': "18", '0': "18",
}

// DecodeBirthDate returns the CCYYMMDD birth date encoded in the first seven
// digits of a resident-number prefix, or nil when the prefix is too short or
// contains a non-digit. Longer inputs are truncated, never rejected.
func DecodeBirthDate(prefix string) *string {
	if len(prefix) < 7 {
		return nil
	}

	for i := 0; i < 7; i++ {
		if prefix[i] < '0' || prefix[i] > '9' {
			return nil
		}
	}

	century, ok := centuryByDigit[prefix[6]]
	if !ok {
		return nil
	}

	birthDate := century + prefix[:6]
	return &birthDate
}
