package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the signed cart session token.
const SessionCookie = "cart_session"

// sessionLifetime matches the cart TTL in the session store.
const sessionLifetime = 30 * 24 * time.Hour

// SessionLocal is the Locals key under which the session ID is stored for
// downstream handlers.
const SessionLocal = "session_id"

// CartSession is a Fiber middleware that binds every request to a cart
// session. A valid signed cookie keeps its session ID; a missing or
// tampered cookie gets a fresh one. Requests never fail here, carts work
// for guests too.
func CartSession(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := c.Cookies(SessionCookie); tokenString != "" {
			if sessionID, err := parseSessionToken(tokenString, secret); err == nil {
				c.Locals(SessionLocal, sessionID)
				return c.Next()
			} else {
				log.Printf("Discarding invalid cart session token: %v", err)
			}
		}

		sessionID := uuid.New().String()
		tokenString, err := newSessionToken(sessionID, secret)
		if err != nil {
			log.Printf("Failed to sign cart session token: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to establish session",
			})
		}

		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    tokenString,
			Expires:  time.Now().Add(sessionLifetime),
			HTTPOnly: true,
			SameSite: "Lax",
		})
		c.Locals(SessionLocal, sessionID)
		return c.Next()
	}
}

// SessionID extracts the session ID placed by CartSession.
func SessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(SessionLocal).(string); ok {
		return id
	}
	return ""
}

func newSessionToken(sessionID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        time.Now().Add(sessionLifetime).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseSessionToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("token is missing session_id claim")
	}
	return sessionID, nil
}
