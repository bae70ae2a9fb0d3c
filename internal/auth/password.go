package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a credential secret. Costs outside bcrypt's range fall back to the default.
func HashPassword(secret string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a presented secret against its hash. The comparison time does not
// depend on where the secrets differ.
func ComparePassword(hashed, presented string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(presented))
}
