package models

type Profile struct {
	Username         string `bson:"_id" json:"username"`
	FirstName        string `bson:"first_name" json:"firstName"`
	LastName         string `bson:"last_name" json:"lastName"`
	ProfilePictureID string `bson:"profile_picture_id" json:"profilePictureId"`
}

type UploadImageResponse struct {
	ImageID string `json:"imageId"`
}
