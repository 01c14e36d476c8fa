package store

import (
	"context"
	"strings"

	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the PostgreSQL backed store. Set mutations are single
// statements (INSERT ... ON CONFLICT DO NOTHING / DELETE ... WHERE), multi
// table rewrites run in one transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.SetupJoinTable(&model.Post{}, "Hashtags", &model.PostHashtag{}); err != nil {
		return nil, errors.Wrap(err, "fail to setup post hashtag join table")
	}
	return &GormStore{db: db}, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "SQLSTATE 23505") ||
		strings.Contains(err.Error(), "duplicate key"))
}

// notFoundOr converts gorm's not found into the NotFound kind and wraps
// anything else.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *GormStore) CreateUser(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if isUniqueViolation(err) {
		return utils.Validation("user %s or email %s already exists", u.Id, u.Email)
	}
	return errors.Wrap(err, "fail to create user")
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user %s not found", id)
	}
	return &user, nil
}

func (s *GormStore) GetUsers(ctx context.Context, ids []string) ([]*model.User, error) {
	users := []*model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at, id").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "fail to get users")
	}
	return users, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, id string, update UserUpdate) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	err = s.db.WithContext(ctx).Model(user).
		Select("email", "username", "bio", "updated_at").
		Updates(user).Error
	if isUniqueViolation(err) {
		return nil, utils.Validation("user with email %s already exists", user.Email)
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to update user")
	}
	return user, nil
}

func (s *GormStore) SearchUsersByEmail(ctx context.Context, substr string) ([]*model.User, error) {
	users := []*model.User{}
	err := s.db.WithContext(ctx).
		Where("email ILIKE ?", "%"+escapeLike(substr)+"%").
		Order("created_at, id").
		Find(&users).Error
	return users, errors.Wrap(err, "fail to search users")
}

func (s *GormStore) AddFollowing(ctx context.Context, followerID, followedID string) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserFollow{FollowerID: followerID, FollowedID: followedID}).Error
	return errors.Wrap(err, "fail to add following")
}

func (s *GormStore) RemoveFollowing(ctx context.Context, followerID, followedID string) error {
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&model.UserFollow{}).Error
	return errors.Wrap(err, "fail to remove following")
}

func (s *GormStore) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Order("created_at").
		Pluck("followed_id", &ids).Error
	return ids, errors.Wrap(err, "fail to get following")
}

func (s *GormStore) FollowingIDsOf(ctx context.Context, userIDs []string) (map[string][]string, error) {
	res := make(map[string][]string, len(userIDs))
	for _, id := range userIDs {
		res[id] = []string{}
	}
	if len(userIDs) == 0 {
		return res, nil
	}
	var edges []model.UserFollow
	if err := s.db.WithContext(ctx).
		Where("follower_id IN ?", userIDs).
		Order("created_at").
		Find(&edges).Error; err != nil {
		return nil, errors.Wrap(err, "fail to batch get following")
	}
	for _, e := range edges {
		res[e.FollowerID] = append(res[e.FollowerID], e.FollowedID)
	}
	return res, nil
}

func (s *GormStore) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("followed_id = ?", userID).
		Order("created_at").
		Pluck("follower_id", &ids).Error
	return ids, errors.Wrap(err, "fail to get followers")
}

func (s *GormStore) CreateHashtag(ctx context.Context, h *model.Hashtag) error {
	err := s.db.WithContext(ctx).Create(h).Error
	if isUniqueViolation(err) {
		return utils.Validation("hashtag %s already exists", h.Name)
	}
	return errors.Wrap(err, "fail to create hashtag")
}

func (s *GormStore) GetHashtag(ctx context.Context, id string) (*model.Hashtag, error) {
	var h model.Hashtag
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&h).Error; err != nil {
		return nil, notFoundOr(err, "hashtag %s not found", id)
	}
	return &h, nil
}

func (s *GormStore) GetHashtags(ctx context.Context, ids []string) ([]*model.Hashtag, error) {
	hashtags := []*model.Hashtag{}
	if len(ids) == 0 {
		return hashtags, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at, id").Find(&hashtags).Error
	return hashtags, errors.Wrap(err, "fail to get hashtags")
}

func (s *GormStore) GetHashtagsByName(ctx context.Context, names []string) ([]*model.Hashtag, error) {
	hashtags := []*model.Hashtag{}
	if len(names) == 0 {
		return hashtags, nil
	}
	err := s.db.WithContext(ctx).Where("name IN ?", names).Order("created_at, id").Find(&hashtags).Error
	return hashtags, errors.Wrap(err, "fail to get hashtags by name")
}

func (s *GormStore) ListHashtags(ctx context.Context) ([]*model.Hashtag, error) {
	hashtags := []*model.Hashtag{}
	err := s.db.WithContext(ctx).Order("created_at, id").Find(&hashtags).Error
	return hashtags, errors.Wrap(err, "fail to list hashtags")
}

func (s *GormStore) RenameHashtag(ctx context.Context, id string, name string) (*model.Hashtag, error) {
	h, err := s.GetHashtag(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(h).Update("name", name).Error
	if isUniqueViolation(err) {
		return nil, utils.Validation("hashtag %s already exists", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to rename hashtag")
	}
	return h, nil
}

func (s *GormStore) DeleteHashtag(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hashtag_id = ?", id).Delete(&model.PostHashtag{}).Error; err != nil {
			return errors.Wrap(err, "fail to delete hashtag joins")
		}
		res := tx.Where("id = ?", id).Delete(&model.Hashtag{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "fail to delete hashtag")
		}
		if res.RowsAffected == 0 {
			return utils.NotFound("hashtag %s not found", id)
		}
		return nil
	})
}

// replaceHashtags rewrites the hashtag set of a post inside tx.
func replaceHashtags(tx *gorm.DB, postID string, hashtagIDs []string) error {
	hashtagIDs = utils.UniqueStrings(hashtagIDs)
	if len(hashtagIDs) > 0 {
		var count int64
		if err := tx.Model(&model.Hashtag{}).Where("id IN ?", hashtagIDs).Count(&count).Error; err != nil {
			return errors.Wrap(err, "fail to check hashtags")
		}
		if int(count) != len(hashtagIDs) {
			return utils.Validation("some hashtags of %v not found", hashtagIDs)
		}
	}
	if err := tx.Where("post_id = ?", postID).Delete(&model.PostHashtag{}).Error; err != nil {
		return errors.Wrap(err, "fail to clear post hashtags")
	}
	if len(hashtagIDs) == 0 {
		return nil
	}
	joins := make([]model.PostHashtag, 0, len(hashtagIDs))
	for _, hid := range hashtagIDs {
		joins = append(joins, model.PostHashtag{PostID: postID, HashtagID: hid})
	}
	return errors.Wrap(
		tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&joins).Error,
		"fail to tag post")
}

// insertHashtags creates hs inside tx. A name taken meanwhile fails the
// whole transaction.
func insertHashtags(tx *gorm.DB, hs []*model.Hashtag) error {
	if len(hs) == 0 {
		return nil
	}
	err := tx.Create(&hs).Error
	if isUniqueViolation(err) {
		names := make([]string, 0, len(hs))
		for _, h := range hs {
			names = append(names, h.Name)
		}
		return utils.Validation("some hashtag of %v already exists", names)
	}
	return errors.Wrap(err, "fail to create hashtags")
}

func (s *GormStore) CreatePost(ctx context.Context, p *model.Post, newHashtags []*model.Hashtag) error {
	hashtagIDs := p.HashtagIDs()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insertHashtags(tx, newHashtags); err != nil {
			return err
		}
		row := *p
		row.Hashtags = nil
		row.User = nil
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.Validation("post with title %q already exists", p.Title)
			}
			return errors.Wrap(err, "fail to create post")
		}
		p.CreatedAt, p.UpdatedAt = row.CreatedAt, row.UpdatedAt
		return replaceHashtags(tx, p.Id, hashtagIDs)
	})
	return err
}

func (s *GormStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := s.db.WithContext(ctx).Preload("Hashtags").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFoundOr(err, "post %s not found", id)
	}
	return &post, nil
}

func (s *GormStore) UpdatePost(ctx context.Context, id string, update PostUpdate) (*model.Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			return notFoundOr(err, "post %s not found", id)
		}
		if err := insertHashtags(tx, update.NewHashtags); err != nil {
			return err
		}
		columns := map[string]interface{}{}
		if update.Title != nil {
			columns["title"] = *update.Title
		}
		if update.Content != nil {
			columns["content"] = *update.Content
		}
		if update.Image != nil {
			columns["image"] = *update.Image
		}
		if len(columns) > 0 {
			err := tx.Model(&post).Updates(columns).Error
			if isUniqueViolation(err) {
				return utils.Validation("post with title %q already exists", *update.Title)
			}
			if err != nil {
				return errors.Wrap(err, "fail to update post")
			}
		}
		if update.HashtagIDs != nil {
			return replaceHashtags(tx, id, *update.HashtagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id)
}

func (s *GormStore) DeletePost(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.PostLike{}, &model.PostHashtag{}, &model.Comment{}} {
			if err := tx.Where("post_id = ?", id).Delete(m).Error; err != nil {
				return errors.Wrap(err, "fail to delete post relations")
			}
		}
		res := tx.Where("id = ?", id).Delete(&model.Post{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "fail to delete post")
		}
		if res.RowsAffected == 0 {
			return utils.NotFound("post %s not found", id)
		}
		return nil
	})
}

func (s *GormStore) ListPosts(ctx context.Context, q PostQuery) ([]*model.Post, error) {
	posts := []*model.Post{}
	if (q.OwnerIDs != nil && len(q.OwnerIDs) == 0) ||
		(q.IDs != nil && len(q.IDs) == 0) ||
		(q.HashtagIDs != nil && len(q.HashtagIDs) == 0) {
		return posts, nil
	}

	db := s.db.WithContext(ctx)
	tx := db.Model(&model.Post{}).Preload("Hashtags")
	if q.OwnerIDs != nil {
		tx = tx.Where("user_id IN ?", q.OwnerIDs)
	}
	if q.IDs != nil {
		tx = tx.Where("id IN ?", q.IDs)
	}
	if q.HashtagIDs != nil {
		// Semi-join keeps each post once however many hashtags it matches.
		tagged := db.Model(&model.PostHashtag{}).Select("post_id").Where("hashtag_id IN ?", q.HashtagIDs)
		tx = tx.Where("id IN (?)", tagged)
	}
	err := tx.Order("created_at, id").Find(&posts).Error
	return posts, errors.Wrap(err, "fail to list posts")
}

func (s *GormStore) PostTitleTaken(ctx context.Context, title string, excludeID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("title = ? AND id <> ?", title, excludeID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "fail to check post title")
}

func (s *GormStore) AddLike(ctx context.Context, userID, postID string) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PostLike{PostID: postID, UserID: userID}).Error
	return errors.Wrap(err, "fail to add like")
}

func (s *GormStore) RemoveLike(ctx context.Context, userID, postID string) error {
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.PostLike{}).Error
	return errors.Wrap(err, "fail to remove like")
}

func (s *GormStore) LikedPostIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("post_id", &ids).Error
	return ids, errors.Wrap(err, "fail to get liked posts")
}

func (s *GormStore) LikerIDsOf(ctx context.Context, postIDs []string) (map[string][]string, error) {
	res := make(map[string][]string, len(postIDs))
	for _, id := range postIDs {
		res[id] = []string{}
	}
	if len(postIDs) == 0 {
		return res, nil
	}
	var likes []model.PostLike
	if err := s.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at").
		Find(&likes).Error; err != nil {
		return nil, errors.Wrap(err, "fail to batch get likes")
	}
	for _, l := range likes {
		res[l.PostID] = append(res[l.PostID], l.UserID)
	}
	return res, nil
}

func (s *GormStore) CreateComment(ctx context.Context, c *model.Comment) error {
	row := *c
	row.User = nil
	row.Post = nil
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Wrap(err, "fail to create comment")
	}
	c.CreatedAt = row.CreatedAt
	return nil
}

func (s *GormStore) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFoundOr(err, "comment %s not found", id)
	}
	return &c, nil
}

func (s *GormStore) UpdateComment(ctx context.Context, id string, content string) (*model.Comment, error) {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(c).Update("content", content).Error; err != nil {
		return nil, errors.Wrap(err, "fail to update comment")
	}
	return c, nil
}

func (s *GormStore) DeleteComment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "fail to delete comment")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("comment %s not found", id)
	}
	return nil
}

func (s *GormStore) ListCommentsByOwner(ctx context.Context, userID string) ([]*model.Comment, error) {
	comments := []*model.Comment{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&comments).Error
	return comments, errors.Wrap(err, "fail to list comments")
}

func (s *GormStore) ListCommentsByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	comments := []*model.Comment{}
	err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at, id").Find(&comments).Error
	return comments, errors.Wrap(err, "fail to list comments")
}
