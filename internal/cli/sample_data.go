package cli

import (
	"fmt"
	"time"

	"atelier-learning-service/internal/domain"
)

// The sample catalogue mirrors a small AR trade-skills offering; it backs the
// demo mode and the seed command.

func sampleModules() []domain.Module {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Module{
		{
			ID: "plumbing-basics", Title: "Plumbing Fundamentals", Category: "Plumbing",
			Level: domain.LevelBeginner, Description: "Residential plumbing basics with hands-on AR exercises.",
			LessonsCount: 6, Duration: "6h", Rating: 4.8, Students: 1245, CreatedAt: base,
		},
		{
			ID: "residential-electricity", Title: "Residential Electricity", Category: "Electricity",
			Level: domain.LevelBeginner, Description: "Master home electrical installation with interactive AR simulations.",
			LessonsCount: 4, Duration: "8h", Rating: 4.9, Students: 2103, CreatedAt: base.Add(24 * time.Hour),
		},
		{
			ID: "advanced-auto-mechanics", Title: "Advanced Auto Mechanics", Category: "Mechanics",
			Level: domain.LevelAdvanced, Description: "Engine diagnostics and complex repairs guided by AR. Certification included.",
			Premium: true, LessonsCount: 5, Duration: "12h", Rating: 4.7, Students: 867, CreatedAt: base.Add(48 * time.Hour),
		},
		{
			ID: "industrial-welding", Title: "Industrial Welding", Category: "Mechanics",
			Level: domain.LevelIntermediate, Description: "MIG/TIG welding techniques with realtime AR feedback on your technique.",
			Premium: true, LessonsCount: 3, Duration: "5h", Rating: 4.6, Students: 534, CreatedAt: base.Add(72 * time.Hour),
		},
	}
}

func sampleLessons() []domain.Lesson {
	var lessons []domain.Lesson
	add := func(moduleID string, titles []string, kinds []domain.ContentKind) {
		for i, title := range titles {
			lessons = append(lessons, domain.Lesson{
				ID:          fmt.Sprintf("%s-l%d", moduleID, i+1),
				ModuleID:    moduleID,
				Title:       title,
				ContentKind: kinds[i%len(kinds)],
				OrderIndex:  i + 1,
				Duration:    "30min",
			})
		}
	}
	add("plumbing-basics",
		[]string{"Tools and safety", "Pipe materials", "Cutting and joining", "Traps and vents", "Fixing leaks", "Fixture installation"},
		[]domain.ContentKind{domain.ContentVideo, domain.ContentAR, domain.ContentPDF})
	add("residential-electricity",
		[]string{"Circuits and current", "Breaker panels", "Wiring a room", "Grounding and safety"},
		[]domain.ContentKind{domain.ContentVideo, domain.ContentAR})
	add("advanced-auto-mechanics",
		[]string{"Engine diagnostics", "Fuel systems", "Ignition timing", "Transmission overhaul", "Emissions testing"},
		[]domain.ContentKind{domain.ContentAR, domain.ContentVideo})
	add("industrial-welding",
		[]string{"MIG basics", "TIG technique", "Joint inspection"},
		[]domain.ContentKind{domain.ContentAR, domain.ContentVideo, domain.ContentPDF})
	return lessons
}

func sampleQuizQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{
			ID: "plumbing-basics-q1", ModuleID: "plumbing-basics",
			Prompt:  "Which tool is used to cut copper pipe cleanly?",
			Options: []string{"Hacksaw", "Pliers", "Tube cutter"}, CorrectAnswer: 2,
		},
		{
			ID: "plumbing-basics-q2", ModuleID: "plumbing-basics",
			Prompt:  "What is the purpose of a P-trap?",
			Options: []string{"Increase pressure", "Block sewer gases", "Filter debris"}, CorrectAnswer: 1,
		},
		{
			ID: "plumbing-basics-q3", ModuleID: "plumbing-basics",
			Prompt:  "Which joint sealing is used on threaded fittings?",
			Options: []string{"Solder", "PTFE tape", "Epoxy"}, CorrectAnswer: 1,
		},
		{
			ID: "residential-electricity-q1", ModuleID: "residential-electricity",
			Prompt:  "What does a circuit breaker protect against?",
			Options: []string{"Overcurrent", "Low voltage", "Static"}, CorrectAnswer: 0,
		},
		{
			ID: "residential-electricity-q2", ModuleID: "residential-electricity",
			Prompt:  "Which wire color is ground in most residential wiring?",
			Options: []string{"Red", "Green", "Black"}, CorrectAnswer: 1,
		},
	}
}
