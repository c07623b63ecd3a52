// One-off: go run scripts/genhash.go <password>
// Prints an argon2id hash for seeding the admin user.
package main

import (
	"fmt"
	"os"

	"Newsroom/internal/auth"
)

func main() {
	password := "admin"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	h, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	fmt.Print(h)
}
