package domain

import "time"

// AnswerLetters lists the option labels in the only order scoring understands.
var AnswerLetters = [4]string{"A", "B", "C", "D"}

// Question is one validated multiple-choice question.
// Options are always four entries labelled "A) ", "B) ", "C) ", "D) ".
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// AnswerIndex returns the option index of the correct answer, or -1.
func (q Question) AnswerIndex() int {
	return LetterIndex(q.CorrectAnswer)
}

// LetterIndex maps "A".."D" to 0..3 and anything else to -1.
func LetterIndex(letter string) int {
	for i, l := range AnswerLetters {
		if l == letter {
			return i
		}
	}
	return -1
}

// Quiz is the persisted quiz record.
type Quiz struct {
	ID              string     `json:"quizId"`
	CreatorName     string     `json:"creatorName"`
	CreatorWallet   string     `json:"creatorWallet"`
	Questions       []Question `json:"questions"`
	NumParticipants int        `json:"numParticipants"`
	QuestionCount   int        `json:"questionCount"`
	RewardPerScore  float64    `json:"rewardPerScore"`
	TotalCost       float64    `json:"totalCost"`
	IsPublic        bool       `json:"isPublic"`
	IsFinished      bool       `json:"isFinished"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// QuizPatch carries the fields a creator may change after creation.
type QuizPatch struct {
	IsPublic   *bool `json:"isPublic"`
	IsFinished *bool `json:"isFinished"`
}

// Apply copies the set fields of the patch onto quiz.
func (p QuizPatch) Apply(quiz *Quiz) {
	if p.IsPublic != nil {
		quiz.IsPublic = *p.IsPublic
	}
	if p.IsFinished != nil {
		quiz.IsFinished = *p.IsFinished
	}
}

// PublicQuestion is a question without its answer key.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

// PublicQuiz is what participants see before submitting.
type PublicQuiz struct {
	ID            string           `json:"quizId"`
	CreatorName   string           `json:"creatorName"`
	QuestionCount int              `json:"questionCount"`
	Questions     []PublicQuestion `json:"questions"`
}

// Public strips the answer key from the quiz.
func (q Quiz) Public() PublicQuiz {
	questions := make([]PublicQuestion, 0, len(q.Questions))
	for _, question := range q.Questions {
		questions = append(questions, PublicQuestion{
			ID:      question.ID,
			Text:    question.Text,
			Options: question.Options,
		})
	}
	return PublicQuiz{
		ID:            q.ID,
		CreatorName:   q.CreatorName,
		QuestionCount: len(q.Questions),
		Questions:     questions,
	}
}

// Participant is a wallet that joined a quiz. Score stays nil until submission.
type Participant struct {
	QuizID        string     `json:"quizId"`
	WalletAddress string     `json:"walletAddress"`
	Name          string     `json:"participantName"`
	Score         *int       `json:"score"`
	JoinedAt      time.Time  `json:"joinedAt"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	WalletAddress string `json:"walletAddress"`
	Name          string `json:"participantName"`
	Score         *int   `json:"score"`
}

// Leaderboard captures the ordered scoreboard for a quiz.
type Leaderboard struct {
	QuizID        string             `json:"quizId"`
	CreatorName   string             `json:"creatorName"`
	QuestionCount int                `json:"questionCount"`
	IsFinished    bool               `json:"isFinished"`
	Entries       []LeaderboardEntry `json:"entries"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// SubmissionResult summarizes a scored submission.
type SubmissionResult struct {
	QuizID        string `json:"quizId"`
	WalletAddress string `json:"walletAddress"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
}
