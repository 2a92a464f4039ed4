package dto

type AddFavoriteRequest struct {
	VehicleID string `json:"vehicleId"`
	Title     string `json:"title,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Price     int64  `json:"price,omitempty"`
}

type FavoriteResponse struct {
	VehicleID string `json:"vehicleId"`
	Title     string `json:"title,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Price     int64  `json:"price,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type ListFavoritesResponse struct {
	Favorites []FavoriteResponse `json:"favorites"`
}
