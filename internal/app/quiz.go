package app

import (
	"atelier-learning-service/internal/domain"
)

const noSelection = -1

// QuizSession steps a learner through a module's quiz. It is ephemeral and
// process-local: abandonment discards it, nothing is persisted mid-session.
// States are in-progress (index, selection, history) and completed (score);
// completed is terminal.
type QuizSession struct {
	questions []domain.QuizQuestion
	current   int
	selected  int
	answers   []int
	completed bool
	score     int
}

// NewQuizSession builds a session over the module's ordered question list.
// A module with zero questions has no quiz: domain.ErrNoQuiz.
func NewQuizSession(questions []domain.QuizQuestion) (*QuizSession, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuiz
	}
	return &QuizSession{
		questions: questions,
		selected:  noSelection,
		answers:   make([]int, 0, len(questions)),
	}, nil
}

// SelectOption picks an answer for the current question. An answer, once
// chosen, is locked: re-selection is ignored, not overwritten.
func (s *QuizSession) SelectOption(i int) error {
	if s.completed {
		return domain.ErrQuizCompleted
	}
	if i < 0 || i >= len(s.questions[s.current].Options) {
		return domain.ErrInvalidOption
	}
	if s.selected != noSelection {
		return nil
	}
	s.selected = i
	return nil
}

// Advance commits the selected answer and moves to the next question, or
// computes the final score after the last one. Requires a selection.
func (s *QuizSession) Advance() error {
	if s.completed {
		return domain.ErrQuizCompleted
	}
	if s.selected == noSelection {
		return domain.ErrNoSelection
	}

	s.answers = append(s.answers, s.selected)
	s.selected = noSelection

	if s.current+1 < len(s.questions) {
		s.current++
		return nil
	}

	score := 0
	for i, answer := range s.answers {
		if answer == s.questions[i].CorrectAnswer {
			score++
		}
	}
	s.score = score
	s.completed = true
	return nil
}

// Question returns the current question and its zero-based index.
func (s *QuizSession) Question() (int, domain.QuizQuestion) {
	return s.current, s.questions[s.current]
}

// Selected returns the locked option for the current question, or -1.
func (s *QuizSession) Selected() int {
	return s.selected
}

// Len is the number of questions in the quiz.
func (s *QuizSession) Len() int {
	return len(s.questions)
}

// Completed reports whether the session reached its terminal state.
func (s *QuizSession) Completed() bool {
	return s.completed
}

// Score is the final score; meaningful only once Completed.
func (s *QuizSession) Score() int {
	return s.score
}

// ScorePercent is the rounded final score percentage.
func (s *QuizSession) ScorePercent() int {
	return domain.CompletionPercent(s.score, len(s.questions))
}
