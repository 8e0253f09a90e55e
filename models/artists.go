package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Artist struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"` // bcrypt hash only
	City           string             `bson:"city" json:"city"`
	Country        string             `bson:"country" json:"country"`
	Genre          string             `bson:"genre" json:"genre"`
	Members        string             `bson:"members" json:"members"`
	BandURL        string             `bson:"bandUrl" json:"bandUrl"`
	Bio            string             `bson:"bio" json:"bio"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	BannerPicture  string             `bson:"bannerPicture" json:"bannerPicture"`
	SongsList      []Song             `bson:"songsList" json:"songsList"`
	UpcomingEvents []Event            `bson:"upcomingEvents" json:"upcomingEvents"`
}

type Song struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Duration string             `bson:"duration" json:"duration"`
	URL      string             `bson:"url" json:"url"`
}

type Event struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Date      string             `bson:"date" json:"date"`
	StartTime string             `bson:"startTime" json:"startTime"`
	Venue     string             `bson:"venue" json:"venue"`
	Address   string             `bson:"address" json:"address"`
	TicketURL string             `bson:"ticketUrl" json:"ticketUrl"`
	Info      string             `bson:"info" json:"info"`
}

// ArtistUpdate lists the profile fields PUT /:id may replace. Nil fields are
// left untouched. Password is expected to be hashed before it reaches a store.
type ArtistUpdate struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Genre    *string `json:"genre"`
	Bio      *string `json:"bio"`
	City     *string `json:"city"`
	Country  *string `json:"country"`
	Members  *string `json:"members"`
	BandURL  *string `json:"bandUrl"`
	Email    *string `json:"email"`
}

// Fields returns the non-nil fields keyed by their document names.
func (u ArtistUpdate) Fields() map[string]any {
	out := map[string]any{}
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("name", u.Name)
	set("username", u.Username)
	set("password", u.Password)
	set("genre", u.Genre)
	set("bio", u.Bio)
	set("city", u.City)
	set("country", u.Country)
	set("members", u.Members)
	set("bandUrl", u.BandURL)
	set("email", u.Email)
	return out
}

// Apply copies the non-nil fields onto a.
func (u ArtistUpdate) Apply(a *Artist) {
	assign := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	assign(&a.Name, u.Name)
	assign(&a.Username, u.Username)
	assign(&a.Password, u.Password)
	assign(&a.Genre, u.Genre)
	assign(&a.Bio, u.Bio)
	assign(&a.City, u.City)
	assign(&a.Country, u.Country)
	assign(&a.Members, u.Members)
	assign(&a.BandURL, u.BandURL)
	assign(&a.Email, u.Email)
}
