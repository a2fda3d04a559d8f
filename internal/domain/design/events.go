package design

import "time"

const (
	EventDesignUploaded = "DesignUploaded"
	EventDesignRenamed  = "DesignRenamed"
	EventDesignDeleted  = "DesignDeleted"
)

type DesignUploaded struct {
	DesignID   string    `json:"design_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type DesignRenamed struct {
	DesignID  string    `json:"design_id"`
	Name      string    `json:"name"`
	RenamedAt time.Time `json:"renamed_at"`
}

type DesignDeleted struct {
	DesignID  string    `json:"design_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
