package main

import (
	"log"
	"os"

	"docqa-be/internal/model"
	"docqa-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Enabling pgvector...")
	if err := database.EnableVector(db); err != nil {
		log.Fatalf("Error: Failed to enable vector extension: %v", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.PassageEmbedding{},
		&model.ConversationTurn{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// cosine index for the <=> ordering used by similarity search
	log.Println("Step 3: Creating vector index...")
	indexSQL := `CREATE INDEX IF NOT EXISTS idx_passages_embedding_cosine
		ON passages USING hnsw (embedding_value vector_cosine_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		log.Printf("Warn: Failed to create vector index: %v", err)
	}

	log.Println("✅ Success: Database migration completed.")
}
