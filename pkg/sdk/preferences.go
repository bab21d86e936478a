package tastefeed

import (
	"context"
	"fmt"
)

// UpdateTaste folds like/dislike feedback into the user's taste profile and
// returns the updated profile. likedID is required, dislikedID may be empty.
// Both must name existing reference items.
func (c *Client) UpdateTaste(ctx context.Context, userID, likedID, dislikedID string) (TasteProfile, error) {
	p, err := c.prefSvc.Update(ctx, userID, likedID, dislikedID)
	if err != nil {
		return TasteProfile{}, fmt.Errorf("update taste: %w", err)
	}
	return TasteProfile{
		UserID:  p.UserID(),
		Version: p.Version(),
		Vector:  p.Vector(),
	}, nil
}
