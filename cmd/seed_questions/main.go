package main

import (
	"context"
	"log"
	"time"

	"iq-test-service/internal/config"
	"iq-test-service/internal/database"
	"iq-test-service/internal/logger"
	"iq-test-service/internal/repository/models"
	"iq-test-service/internal/util"

	"github.com/jmoiron/sqlx"
)

type seedQuestion struct {
	Category     string
	Difficulty   int
	Points       int
	Prompt       string
	Options      []string
	CorrectIndex int
}

// The default bank: four questions per reasoning category, twenty in total.
var seedQuestions = []seedQuestion{
	{"logical", 1, 10, "All roses are flowers. Some flowers fade quickly. Which statement must be true?", []string{"All roses fade quickly", "Some roses are flowers", "All roses are flowers", "No roses fade quickly"}, 2},
	{"logical", 2, 15, "If it rains, the ground gets wet. The ground is not wet. What follows?", []string{"It rained", "It did not rain", "The ground is dry sand", "Nothing follows"}, 1},
	{"logical", 2, 15, "Tom is taller than Ann. Ann is taller than Sue. Who is shortest?", []string{"Tom", "Ann", "Sue", "Cannot be determined"}, 2},
	{"logical", 3, 20, "In a certain code, DOG means CAT and CAT means COW. What does DOG mean?", []string{"DOG", "CAT", "COW", "Nothing"}, 1},

	{"numerical", 1, 10, "What is the next number: 2, 4, 8, 16, ...?", []string{"18", "24", "32", "64"}, 2},
	{"numerical", 2, 15, "What is the next number: 1, 1, 2, 3, 5, 8, ...?", []string{"11", "12", "13", "15"}, 2},
	{"numerical", 2, 15, "A shirt costs 20 after a 20% discount. What was the original price?", []string{"24", "25", "26", "28"}, 1},
	{"numerical", 3, 20, "If 3 workers build a wall in 6 hours, how long do 9 workers need?", []string{"2 hours", "3 hours", "9 hours", "18 hours"}, 0},

	{"verbal", 1, 10, "Pick the odd word out.", []string{"apple", "banana", "carrot", "cherry"}, 2},
	{"verbal", 2, 15, "OCEAN is to WATER as DESERT is to ...?", []string{"camel", "sand", "heat", "dune"}, 1},
	{"verbal", 2, 15, "Which word is closest in meaning to 'frugal'?", []string{"wasteful", "thrifty", "wealthy", "generous"}, 1},
	{"verbal", 3, 20, "Rearrange 'RAPIS' to form a word. What is it?", []string{"A fruit", "A city", "An animal", "A color"}, 1},

	{"spatial", 1, 10, "A cube has how many faces?", []string{"4", "6", "8", "12"}, 1},
	{"spatial", 2, 15, "Which shape results from folding a cross of six squares?", []string{"Pyramid", "Cube", "Cylinder", "Prism"}, 1},
	{"spatial", 2, 15, "A clock shows 3:00. What is the angle between the hands?", []string{"60 degrees", "90 degrees", "120 degrees", "180 degrees"}, 1},
	{"spatial", 3, 20, "How many small cubes are in a 3x3x3 cube with the middle one removed?", []string{"25", "26", "27", "24"}, 1},

	{"pattern", 1, 10, "What comes next: circle, square, circle, square, ...?", []string{"circle", "square", "triangle", "hexagon"}, 0},
	{"pattern", 2, 15, "What comes next: A, C, F, J, ...?", []string{"M", "N", "O", "P"}, 2},
	{"pattern", 2, 15, "Which number completes the grid: 2, 6, 18, ...?", []string{"36", "54", "72", "24"}, 1},
	{"pattern", 3, 20, "What comes next: 1, 4, 9, 16, 25, ...?", []string{"30", "32", "36", "49"}, 2},
}

const insertQuery = `INSERT INTO questions
	(ID, CATEGORY, DIFFICULTY, POINTS, PROMPT, OPTIONS, CORRECT_INDEX, POSITION, ACTIVE, CREATED_AT, UPDATED_AT)
	VALUES (:ID, :CATEGORY, :DIFFICULTY, :POINTS, :PROMPT, :OPTIONS, :CORRECT_INDEX, :POSITION, 1, :CREATED_AT, :UPDATED_AT)`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Logger)
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := seed(ctx, db); err != nil {
		log.Fatalf("Failed to seed questions: %v", err)
	}
	log.Printf("Seeded %d questions", len(seedQuestions))
}

func seed(ctx context.Context, db *sqlx.DB) error {
	now := time.Now()
	for i, q := range seedQuestions {
		row := models.Question{
			ID:           util.NewULID(),
			Category:     q.Category,
			Difficulty:   q.Difficulty,
			Points:       q.Points,
			Prompt:       q.Prompt,
			Options:      models.StringSlice(q.Options),
			CorrectIndex: q.CorrectIndex,
			Position:     i + 1,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := db.NamedExecContext(ctx, insertQuery, &row); err != nil {
			return err
		}
	}
	return nil
}
