package helpers

import "golang.org/x/crypto/bcrypt"

// Cost bounds accepted for interactive logins; anything else falls back to DefaultPasswordCost.
const (
	MinPasswordCost     = 6
	MaxPasswordCost     = 12
	DefaultPasswordCost = bcrypt.DefaultCost
)

// MaxPasswordBytes is the longest input bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// BcryptHasher hashes and verifies passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher using cost, or DefaultPasswordCost when cost is out of range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < MinPasswordCost || cost > MaxPasswordCost {
		cost = DefaultPasswordCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash hashes the plain text password using bcrypt with a random salt
func (h BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plain matches the bcrypt hash
func (h BcryptHasher) Compare(hash, plain string) bool {
	return CompareHashAndPassword(hash, plain)
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
