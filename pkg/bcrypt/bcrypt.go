package bcrypt

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 10

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher kullanıcı şifrelerini yapılandırılan cost ile hashler.
type Hasher struct {
	cost int
}

// NewHasher 0 cost için DefaultCost kullanır.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &Hasher{cost: cost}, nil
}

func (h *Hasher) Cost() int {
	return h.cost
}

// Hash şifreyi hashler. 72 byte'tan uzun şifreler reddedilir.
func (h *Hasher) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func (h *Hasher) Compare(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return fmt.Errorf("password comparison failed: %w", err)
	}
	return nil
}

// NeedsRehash hash farklı bir cost ile üretildiyse true döner.
func (h *Hasher) NeedsRehash(hashedPassword string) bool {
	cost, err := bcrypt.Cost([]byte(hashedPassword))
	return err != nil || cost != h.cost
}

// VerifyHash verilen hash'in geçerli bir bcrypt hash'i olup olmadığını kontrol eder
func VerifyHash(hash string) bool {
	return len(hash) == 60 && hash[0:2] == "$2"
}
