package main

import (
	"github.com/trezcool/certquiz/core"
	"github.com/trezcool/certquiz/core/quiz"
	"github.com/trezcool/certquiz/core/score"
	"github.com/trezcool/certquiz/core/settings"
	"github.com/trezcool/certquiz/core/user"
)

// seed initializes any missing data documents with their defaults: an admin
// account, a small starter question set, an empty score ledger and the default
// settings. Existing documents are left alone so the command can be re-run
// safely.
func (cli *commandLine) seed() error {
	if !cli.db.Exists("users") {
		admin := user.User{
			Username:  "admin",
			Name:      "Admin User",
			Role:      user.RoleAdmin,
			CreatedAt: core.FormatTimestamp(nowFunc()),
		}
		admin.SetPassword("admin123")
		if _, err := cli.usrRepo.CreateUser(admin); err != nil {
			return err
		}
		logger.Println("created default admin user (username: admin)")
	}

	if !cli.db.Exists("questions") {
		if err := cli.quizRepo.SaveQuestions(starterQuestions()); err != nil {
			return err
		}
		logger.Println("created starter question set")
	}

	if !cli.db.Exists("scores") {
		if err := cli.scoreRepo.SaveAttempts([]score.Attempt{}); err != nil {
			return err
		}
		logger.Println("created empty score ledger")
	}

	if !cli.db.Exists("settings") {
		if err := cli.settingsRepo.SaveSettings(settings.Defaults()); err != nil {
			return err
		}
		logger.Println("created default settings")
	}
	return nil
}

func starterQuestions() []quiz.Question {
	return []quiz.Question{
		{
			ID:   1,
			Text: "What should you do before operating a forklift?",
			Options: []string{
				"Check fuel only",
				"Full pre-shift inspection",
				"Test horn",
				"Load immediately",
			},
			Answer:      1,
			Explanation: "OSHA requires a pre-shift inspection for safety.",
			Category:    "Safety",
			Difficulty:  quiz.DifficultyBasic,
		},
		{
			ID:   2,
			Text: "What is the proper way to approach an intersection with a forklift?",
			Options: []string{
				"Speed up to get through quickly",
				"Honk and proceed without stopping",
				"Slow down, honk, and look both ways",
				"Always come to a complete stop",
			},
			Answer:      2,
			Explanation: "Slowing down, honking, and looking both ways ensures visibility and warns pedestrians of your approach.",
			Category:    "Operation",
			Difficulty:  quiz.DifficultyIntermediate,
		},
		{
			ID:   3,
			Text: "When parking a forklift at the end of a shift, you should:",
			Options: []string{
				"Leave the forks raised for easy access next shift",
				"Park anywhere convenient",
				"Lower the forks to the ground, set the brake, and turn off the engine",
				"Leave the key in the ignition for the next operator",
			},
			Answer:      2,
			Explanation: "Lowering forks, setting the brake, and turning off the engine are essential safety protocols for parking.",
			Category:    "Safety",
			Difficulty:  quiz.DifficultyBasic,
		},
	}
}
