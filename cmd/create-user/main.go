package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/primeivy/portal-backend/internal/config"
	"github.com/primeivy/portal-backend/internal/logger"
	"github.com/primeivy/portal-backend/internal/model"
	"github.com/primeivy/portal-backend/internal/source"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	workbook := source.NewWorkbook(cfg.WorkbookPath, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Exam User ===")

	// Username
	fmt.Print("Enter Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Println("Error: Username is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Reject duplicates before touching the sheet.
	users, err := workbook.LoadUsers()
	if err != nil && err != source.ErrUsersSheetMissing {
		log.Fatal().Err(err).Msg("Failed to read users sheet")
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			fmt.Printf("Error: Username '%s' already exists\n", username)
			return
		}
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	if err := workbook.AppendUser(model.User{
		Username: username,
		Password: string(hashedPassword),
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to append user")
	}

	fmt.Printf("\nSuccess! User '%s' added to %s\n", username, cfg.WorkbookPath)
}
