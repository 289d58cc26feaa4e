package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a member of the social graph stored in MongoDB. Followers and
// Following hold the ids of related users; the two sides of each follow
// edge live on different documents.
type User struct {
	ID             primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	ExternalID     string               `json:"externalId" bson:"externalId"`
	Email          string               `json:"email" bson:"email"`
	Username       string               `json:"username" bson:"username"`
	FirstName      string               `json:"firstName" bson:"firstName"`
	LastName       string               `json:"lastName" bson:"lastName"`
	ProfilePicture string               `json:"profilePicture" bson:"profilePicture"`
	BannerImage    string               `json:"bannerImage" bson:"bannerImage"`
	Bio            string               `json:"bio" bson:"bio"`
	Location       string               `json:"location" bson:"location"`
	Followers      []primitive.ObjectID `json:"followers" bson:"followers"`
	Following      []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsFollowing reports whether u follows the given user
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

// HasFollower reports whether the given user follows u
func (u *User) HasFollower(id primitive.ObjectID) bool {
	return containsID(u.Followers, id)
}

// Summary is the reduced form embedded in populated responses
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		ExternalID:     u.ExternalID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		Followers:      nonNilIDs(u.Followers),
		Following:      nonNilIDs(u.Following),
	}
}

// UserSummary is a populated user reference
type UserSummary struct {
	ID             primitive.ObjectID   `json:"_id"`
	ExternalID     string               `json:"externalId"`
	Username       string               `json:"username"`
	FirstName      string               `json:"firstName"`
	LastName       string               `json:"lastName"`
	ProfilePicture string               `json:"profilePicture"`
	Followers      []primitive.ObjectID `json:"followers"`
	Following      []primitive.ObjectID `json:"following"`
}

// UserView is the current user with both follow lists populated
type UserView struct {
	ID             primitive.ObjectID `json:"_id"`
	ExternalID     string             `json:"externalId"`
	Email          string             `json:"email"`
	Username       string             `json:"username"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	ProfilePicture string             `json:"profilePicture"`
	BannerImage    string             `json:"bannerImage"`
	Bio            string             `json:"bio"`
	Location       string             `json:"location"`
	Followers      []UserSummary      `json:"followers"`
	Following      []UserSummary      `json:"following"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// NewUserView copies u and attaches the populated follow lists
func NewUserView(u *User, followers, following []UserSummary) *UserView {
	if followers == nil {
		followers = []UserSummary{}
	}
	if following == nil {
		following = []UserSummary{}
	}
	return &UserView{
		ID:             u.ID,
		ExternalID:     u.ExternalID,
		Email:          u.Email,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		BannerImage:    u.BannerImage,
		Bio:            u.Bio,
		Location:       u.Location,
		Followers:      followers,
		Following:      following,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UpdateProfileRequest is the allow-list of editable profile fields. Nil
// fields are left untouched; anything else in the request body is ignored.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=50"`
	Username  *string `json:"username,omitempty" validate:"omitempty,username"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=160"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=50"`
}

// IsEmpty reports whether the request changes nothing
func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Username == nil && r.Bio == nil && r.Location == nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func nonNilIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
