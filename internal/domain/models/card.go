package models

// MaskCardNumber reduces an account number to the value that may be logged
// or persisted: its trailing four characters. Inputs shorter than four
// characters are returned unchanged.
func MaskCardNumber(number string) string {
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}
