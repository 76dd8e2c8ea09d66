package sync

import (
	"context"
	"fmt"

	"homeboard/internal/api"
	"homeboard/internal/model"
)

// CreateReward adds a custom reward for a child.
func (s *Syncer) CreateReward(ctx context.Context, childID int64, title, description string, points int) (*model.Reward, error) {
	if points < 0 {
		return nil, fmt.Errorf("points must not be negative")
	}

	provisional := model.Reward{
		ChildID:     childID,
		Title:       title,
		Description: description,
		Points:      points,
		Kind:        model.RewardPredefined,
	}

	reward, err := s.rewardCoord.SubmitCreate(ctx, provisional, func(ctx context.Context) (model.Reward, error) {
		created, err := s.client.CreateReward(ctx, api.RewardParams{
			ChildID:     childID,
			Title:       title,
			Description: description,
			Points:      points,
			Kind:        string(model.RewardPredefined),
		})
		if err != nil {
			return model.Reward{}, err
		}
		return *created, nil
	})
	if err != nil {
		return nil, s.fail(err)
	}
	return &reward, nil
}

// EditReward updates a reward's fields optimistically.
func (s *Syncer) EditReward(ctx context.Context, rewardID int64, title, description string, points int) (*model.Reward, error) {
	if points < 0 {
		return nil, fmt.Errorf("points must not be negative")
	}

	reward, err := s.rewardCoord.ApplyAndSubmit(ctx, rewardID,
		func(r model.Reward) model.Reward {
			r.Title = title
			r.Description = description
			r.Points = points
			return r
		},
		func(ctx context.Context) (model.Reward, error) {
			updated, err := s.client.UpdateReward(ctx, rewardID, api.RewardParams{
				Title:       title,
				Description: description,
				Points:      points,
			})
			if err != nil {
				return model.Reward{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}
	return &reward, nil
}

// DeleteReward removes a custom reward optimistically. The cumulative
// accrual record is refused locally; the server would refuse it too.
func (s *Syncer) DeleteReward(ctx context.Context, rewardID int64) error {
	if reward, ok := s.Rewards.Get(rewardID); ok && reward.Kind == model.RewardCumulative {
		return fmt.Errorf("the accrual record cannot be deleted")
	}
	err := s.rewardCoord.SubmitDelete(ctx, rewardID, func(ctx context.Context) error {
		return s.client.DeleteReward(ctx, rewardID)
	})
	return s.fail(err)
}

// Redeem spends points on a reward. The cost is checked against the
// local balance first: an unaffordable redemption never reaches the
// network.
func (s *Syncer) Redeem(ctx context.Context, childID, rewardID int64) (*model.PointBalance, error) {
	reward, ok := s.Rewards.Get(rewardID)
	if !ok {
		return nil, ErrNotFound
	}
	return s.redeem(ctx, childID, reward.Points, reward.Title)
}

// RedeemPredefined spends points on a catalog reward.
func (s *Syncer) RedeemPredefined(ctx context.Context, childID int64, reward model.PredefinedReward) (*model.PointBalance, error) {
	return s.redeem(ctx, childID, reward.Points, reward.Title)
}

func (s *Syncer) redeem(ctx context.Context, childID int64, cost int, title string) (*model.PointBalance, error) {
	child, ok := s.Children.Get(childID)
	if !ok {
		return nil, ErrNotFound
	}
	if child.Points < cost {
		return nil, ErrInsufficientPoints
	}

	balance, err := s.client.Redeem(ctx, childID, cost, title)
	if err != nil {
		return nil, s.fail(err)
	}

	// Mirror the authoritative balance into the local copies.
	child.Points = balance.Balance
	s.Children.Put(child)
	for _, r := range s.Rewards.List() {
		if r.ChildID == childID && r.Kind == model.RewardCumulative {
			r.Points = balance.Balance
			s.Rewards.Put(r)
			break
		}
	}
	return balance, nil
}

// PredefinedCatalog fetches the fixed reward catalog. The route is
// plan-gated, so api.ErrEntitlement is a normal outcome for free
// accounts.
func (s *Syncer) PredefinedCatalog(ctx context.Context) ([]model.PredefinedReward, error) {
	catalog, err := s.client.PredefinedRewards(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	return catalog, nil
}

// CreateChild adds a child profile.
func (s *Syncer) CreateChild(ctx context.Context, params api.ChildParams) (*model.Child, error) {
	provisional := model.Child{
		Name:        params.Name,
		DateOfBirth: params.DateOfBirth,
		Grade:       params.Grade,
		AvatarURL:   params.AvatarURL,
	}

	child, err := s.childCoord.SubmitCreate(ctx, provisional, func(ctx context.Context) (model.Child, error) {
		created, err := s.client.CreateChild(ctx, params)
		if err != nil {
			return model.Child{}, err
		}
		return *created, nil
	})
	if err != nil {
		return nil, s.fail(err)
	}
	return &child, nil
}

// EditChild updates a child profile optimistically.
func (s *Syncer) EditChild(ctx context.Context, childID int64, params api.ChildParams) (*model.Child, error) {
	child, err := s.childCoord.ApplyAndSubmit(ctx, childID,
		func(c model.Child) model.Child {
			c.Name = params.Name
			c.DateOfBirth = params.DateOfBirth
			c.Grade = params.Grade
			c.AvatarURL = params.AvatarURL
			return c
		},
		func(ctx context.Context) (model.Child, error) {
			updated, err := s.client.UpdateChild(ctx, childID, params)
			if err != nil {
				return model.Child{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}
	return &child, nil
}
