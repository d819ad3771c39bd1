package aliexpress

import (
	"encoding/json"
	"fmt"
	"time"

	"reviewking/internal/domain"
)

// Shapes of the feedback search API. The same record layout shows up in
// the embedded page state, so both parsers share feedbackRecord.
type feedbackEnvelope struct {
	Data struct {
		EvaViewList []feedbackRecord `json:"evaViewList"`
	} `json:"data"`
}

type feedbackRecord struct {
	EvaluationID flexString `json:"evaluationId"`
	LegacyID     flexString `json:"id"`
	BuyerName    string     `json:"buyerName"`
	Feedback     string     `json:"buyerFeedback"`
	BuyerEval    flexInt    `json:"buyerEval"`
	EvalTime     string     `json:"evalTime"`
	BuyerCountry string     `json:"buyerCountry"`
	Images       []imageRef `json:"images"`
	Translation  *string    `json:"buyerTranslationFeedback"`
	UpVoteCount  flexInt    `json:"upVoteCount"`
}

// parseFeedbackAPI decodes one API page into canonical reviews.
// Positions are absolute across pages: (page-1)*pageSize+1 onward.
// A malformed body fails the whole call; per-record oddities degrade
// to field defaults instead.
func parseFeedbackAPI(body []byte, productID string, page, pageSize int) ([]domain.Review, error) {
	var env feedbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode feedback page %d: %w", page, err)
	}
	offset := (page - 1) * pageSize
	reviews := make([]domain.Review, 0, len(env.Data.EvaViewList))
	for i, rec := range env.Data.EvaViewList {
		reviews = append(reviews, rec.toReview(productID, offset+i+1))
	}
	return reviews, nil
}

func (rec feedbackRecord) toReview(productID string, position int) domain.Review {
	id := rec.EvaluationID.v
	if id == "" {
		id = rec.LegacyID.v
	}
	if id == "" {
		id = fmt.Sprintf("%s_%d", productID, position)
	}
	name := rec.BuyerName
	if name == "" {
		name = "Customer"
	}
	date := rec.EvalTime
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	country := rec.BuyerCountry
	if country == "" {
		country = "Unknown"
	}
	return domain.Review{
		ID:           id,
		Platform:     domain.PlatformAliExpress,
		ProductID:    productID,
		ReviewerName: name,
		Text:         rec.Feedback,
		Rating:       rec.BuyerEval.or(100),
		Date:         date,
		Country:      country,
		Verified:     true,
		Images:       imageURLs(rec.Images),
		Translation:  rec.Translation,
		HelpfulCount: rec.UpVoteCount.or(0),
		Position:     position,
	}
}
