package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"quizgen-service/internal/domain"
	"quizgen-service/internal/quizgen"
	"quizgen-service/internal/source"
)

const maxIDAttempts = 5

// QuestionGenerator produces validated questions for a quiz.
type QuestionGenerator interface {
	Generate(ctx context.Context, in quizgen.Input) ([]domain.Question, error)
}

// PageFetcher returns the readable text of a web page.
type PageFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// Deps wires the collaborators of a QuizService.
type Deps struct {
	Quizzes     QuizStore
	Sessions    SessionRepository
	Generator   QuestionGenerator
	Fetcher     PageFetcher
	Validate    *validator.Validate
	Logger      zerolog.Logger
	MaxPDFBytes int64

	// optional, for tests
	Clock func() time.Time
	NewID func() string
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	quizzes     QuizStore
	sessions    SessionRepository
	generator   QuestionGenerator
	fetcher     PageFetcher
	validate    *validator.Validate
	logger      zerolog.Logger
	maxPDFBytes int64
	now         func() time.Time
	newID       func() string
}

func NewQuizService(deps Deps) *QuizService {
	s := &QuizService{
		quizzes:     deps.Quizzes,
		sessions:    deps.Sessions,
		generator:   deps.Generator,
		fetcher:     deps.Fetcher,
		validate:    deps.Validate,
		logger:      deps.Logger.With().Str("component", "quiz_service").Logger(),
		maxPDFBytes: deps.MaxPDFBytes,
		now:         deps.Clock,
		newID:       deps.NewID,
	}
	if s.validate == nil {
		s.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = NewQuizID
	}
	return s
}

// CreateFromPrompt generates and stores a quiz about a topic.
func (s *QuizService) CreateFromPrompt(ctx context.Context, req CreateFromPromptRequest) (domain.Quiz, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if err := s.validate.Struct(req); err != nil {
		return domain.Quiz{}, err
	}
	return s.create(ctx, req.QuizSettings, quizgen.Input{
		Kind:  quizgen.SourceTopic,
		Topic: req.Prompt,
	})
}

// CreateFromPDF generates and stores a quiz from the text of a PDF.
func (s *QuizService) CreateFromPDF(ctx context.Context, req CreateFromPDFRequest) (domain.Quiz, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Quiz{}, err
	}
	text, err := source.PDFText(req.Document, s.maxPDFBytes)
	if err != nil {
		return domain.Quiz{}, err
	}
	return s.create(ctx, req.QuizSettings, quizgen.Input{
		Kind:     quizgen.SourcePDF,
		Material: text,
	})
}

// CreateFromURL generates and stores a quiz from a web page.
func (s *QuizService) CreateFromURL(ctx context.Context, req CreateFromURLRequest) (domain.Quiz, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Quiz{}, err
	}
	if s.fetcher == nil {
		return domain.Quiz{}, fmt.Errorf("web sources are not configured")
	}
	text, err := s.fetcher.FetchText(ctx, req.URL)
	if err != nil {
		return domain.Quiz{}, err
	}
	return s.create(ctx, req.QuizSettings, quizgen.Input{
		Kind:     quizgen.SourceWeb,
		Material: text,
		Origin:   req.URL,
	})
}

func (s *QuizService) create(ctx context.Context, settings QuizSettings, in quizgen.Input) (domain.Quiz, error) {
	in.QuestionCount = settings.QuestionCount
	questions, err := s.generator.Generate(ctx, in)
	if err != nil {
		return domain.Quiz{}, err
	}
	if len(questions) == 0 {
		return domain.Quiz{}, domain.ErrNoQuestions
	}

	quiz := domain.Quiz{
		CreatorName:     settings.CreatorName,
		CreatorWallet:   settings.CreatorWallet,
		Questions:       questions,
		NumParticipants: settings.NumParticipants,
		QuestionCount:   settings.QuestionCount,
		RewardPerScore:  settings.RewardPerScore,
		TotalCost:       settings.totalCost(),
		IsPublic:        settings.IsPublic,
		CreatedAt:       s.now().UTC(),
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		quiz.ID = s.newID()
		err = s.quizzes.CreateQuiz(ctx, quiz)
		if err == nil {
			s.logger.Info().
				Str("quiz_id", quiz.ID).
				Str("source", string(in.Kind)).
				Int("questions", len(questions)).
				Msg("quiz created")
			return quiz, nil
		}
		if !errors.Is(err, domain.ErrQuizExists) {
			return domain.Quiz{}, fmt.Errorf("store quiz: %w", err)
		}
	}
	return domain.Quiz{}, fmt.Errorf("allocate quiz id: %w", err)
}

// Update applies a publish/finish patch to a quiz.
func (s *QuizService) Update(ctx context.Context, quizID string, patch domain.QuizPatch) (domain.Quiz, error) {
	quiz, err := s.quizzes.UpdateQuiz(ctx, quizID, patch)
	if err != nil {
		return domain.Quiz{}, err
	}
	s.publish(ctx, quiz)
	return quiz, nil
}

// Verify checks that wallet may still take the quiz and returns the quiz
// without its answer key.
func (s *QuizService) Verify(ctx context.Context, quizID string, req VerifyRequest) (domain.PublicQuiz, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.PublicQuiz{}, err
	}
	quiz, err := s.checkEligible(ctx, quizID, req.WalletAddress)
	if err != nil {
		return domain.PublicQuiz{}, err
	}
	return quiz.Public(), nil
}

// Join registers a wallet as a participant of a public quiz.
func (s *QuizService) Join(ctx context.Context, quizID string, req JoinRequest) (domain.Participant, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Participant{}, err
	}
	quiz, err := s.checkEligible(ctx, quizID, req.WalletAddress)
	if err != nil {
		return domain.Participant{}, err
	}

	participant := domain.Participant{
		QuizID:        quizID,
		WalletAddress: req.WalletAddress,
		Name:          req.ParticipantName,
		JoinedAt:      s.now().UTC(),
	}
	if err := s.quizzes.AddParticipant(ctx, participant, quiz.NumParticipants); err != nil {
		return domain.Participant{}, err
	}
	s.publish(ctx, quiz)
	return participant, nil
}

func (s *QuizService) checkEligible(ctx context.Context, quizID, wallet string) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !quiz.IsPublic {
		return domain.Quiz{}, domain.ErrQuizPrivate
	}

	_, err = s.quizzes.GetParticipant(ctx, quizID, wallet)
	switch {
	case err == nil:
		return domain.Quiz{}, domain.ErrAlreadyParticipated
	case !errors.Is(err, domain.ErrParticipantNotFound):
		return domain.Quiz{}, err
	}

	count, err := s.quizzes.CountParticipants(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if count >= quiz.NumParticipants {
		return domain.Quiz{}, domain.ErrQuizFull
	}
	return quiz, nil
}

// Submit scores a participant's answers. A later submission replaces the
// earlier score.
func (s *QuizService) Submit(ctx context.Context, req SubmitRequest) (domain.SubmissionResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.SubmissionResult{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if _, err := s.quizzes.GetParticipant(ctx, req.QuizID, req.WalletAddress); err != nil {
		return domain.SubmissionResult{}, err
	}

	score := scoreAnswers(quiz, req.Answers)
	if _, err := s.quizzes.SetScore(ctx, req.QuizID, req.WalletAddress, score, s.now().UTC()); err != nil {
		return domain.SubmissionResult{}, err
	}
	s.publish(ctx, quiz)

	return domain.SubmissionResult{
		QuizID:        req.QuizID,
		WalletAddress: req.WalletAddress,
		Score:         score,
		Total:         len(quiz.Questions),
	}, nil
}

// Leaderboard returns the ordered scoreboard of a quiz.
func (s *QuizService) Leaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return s.leaderboardFor(ctx, quiz)
}

func (s *QuizService) leaderboardFor(ctx context.Context, quiz domain.Quiz) (domain.Leaderboard, error) {
	participants, err := s.quizzes.ListParticipants(ctx, quiz.ID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return buildLeaderboard(quiz, participants, s.now().UTC()), nil
}

// Subscribe returns a channel that receives leaderboard updates for a quiz,
// starting with the current board. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, quizID string) (<-chan domain.Leaderboard, func(), error) {
	lb, err := s.Leaderboard(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	// A session may be removed between GetOrCreate and subscribe when its
	// last listener leaves; subscribers attach only to the registered one.
	var (
		ch          <-chan domain.Leaderboard
		unsubscribe func()
	)
	for {
		session := s.sessions.GetOrCreate(quizID)
		ch, unsubscribe = session.subscribe(lb)
		if current, ok := s.sessions.Get(quizID); ok && current == session {
			break
		}
		unsubscribe()
	}
	cancel := func() {
		unsubscribe()
		s.sessions.DeleteIfEmpty(quizID)
	}
	return ch, cancel, nil
}

// publish pushes a fresh board to live subscribers, if any.
func (s *QuizService) publish(ctx context.Context, quiz domain.Quiz) {
	session, ok := s.sessions.Get(quiz.ID)
	if !ok {
		return
	}
	lb, err := s.leaderboardFor(ctx, quiz)
	if err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quiz.ID).Msg("leaderboard refresh failed")
		return
	}
	session.publish(lb)
}
