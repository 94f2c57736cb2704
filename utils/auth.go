package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Principal roles carried in session tokens
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
)

// HashPIN creates a bcrypt hash of a staff PIN
func HashPIN(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPIN compares a PIN against a hash
func CheckPIN(pin, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}

// GenerateCustomerToken creates a session JWT for a customer
func GenerateCustomerToken(customerID string) (string, error) {
	ttl, _ := time.ParseDuration(CustomerTokenExpiration)
	claims := jwt.MapClaims{
		"role":        RoleCustomer,
		"customer_id": customerID,
		"exp":         time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// GenerateVendorToken creates a session JWT for a staff member
func GenerateVendorToken(staffID, storeID string) (string, error) {
	ttl, _ := time.ParseDuration(VendorTokenExpiration)
	claims := jwt.MapClaims{
		"role":     RoleVendor,
		"staff_id": staffID,
		"store_id": storeID,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// ParseSessionToken validates a session JWT and returns its claims
func ParseSessionToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
