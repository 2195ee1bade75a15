package main

import (
	"fmt"
	"log"
	"os"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/config"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create-admin":
		if len(os.Args) != 5 {
			fmt.Println("Usage: admin create-admin <name> <email> <password>")
			os.Exit(1)
		}
		if err := createAdmin(storageSvc, os.Args[2], os.Args[3], os.Args[4]); err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		fmt.Printf("Admin account %s created.\n", os.Args[3])
	case "approve-authority":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin approve-authority <email>")
			os.Exit(1)
		}
		if err := approveAuthority(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error approving authority: %v", err)
		}
		fmt.Printf("Authority %s approved.\n", os.Args[2])
	case "seed-categories":
		if err := seedCategories(storageSvc); err != nil {
			log.Fatalf("Error seeding categories: %v", err)
		}
		fmt.Println("Categories seeded.")
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func createAdmin(s storage.Storage, name, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.SaveUser(&models.User{
		Name:           name,
		Email:          email,
		Password:       string(hash),
		Role:           models.RoleAdmin,
		ApprovalStatus: models.ApprovalApproved,
		IsActive:       true,
	})
}

func approveAuthority(s storage.Storage, email string) error {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user.Role != models.RoleAuthority {
		return fmt.Errorf("%s is not an authority account", email)
	}
	user.ApprovalStatus = models.ApprovalApproved
	return s.SaveUser(user)
}

func seedCategories(s storage.Storage) error {
	for i := range config.SeedCategories {
		if err := s.SaveCategory(&config.SeedCategories[i]); err != nil {
			return err
		}
	}
	return nil
}
