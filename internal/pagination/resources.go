package pagination

import "gorm.io/gorm/clause"

// List rules for each resource
var (
	Sections = Resource{
		SortFields: map[string]string{
			"createdAt": "created_at",
			"title":     "title",
			"order":     "position",
		},
		DefaultSort:   "createdAt",
		SearchColumns: []string{"title", "description"},
	}

	Threads = Resource{
		SortFields: map[string]string{
			"createdAt":   "created_at",
			"title":       "title",
			"order":       "position",
			"topicsCount": "topics_count",
		},
		DefaultSort:   "createdAt",
		SearchColumns: []string{"title", "description"},
	}

	Topics = Resource{
		SortFields: map[string]string{
			"createdAt":     "created_at",
			"title":         "title",
			"views":         "views",
			"commentsCount": "comments_count",
		},
		DefaultSort:   "createdAt",
		SearchColumns: []string{"title", "content"},
		LeadingOrder: []clause.OrderByColumn{
			{Column: clause.Column{Name: "pinned"}, Desc: true},
		},
	}

	Comments = Resource{
		SortFields: map[string]string{
			"createdAt": "created_at",
		},
		DefaultSort:   "createdAt",
		SearchColumns: []string{"content"},
	}

	Users = Resource{
		SortFields: map[string]string{
			"createdAt": "created_at",
			"username":  "username",
			"fullName":  "full_name",
			"email":     "email",
			"role":      "role",
			"status":    "status",
			"bannedAt":  "banned_at",
			"deletedAt": "deleted_at",
		},
		DefaultSort:   "createdAt",
		SearchColumns: []string{"username", "email"},
	}

	Notifications = Resource{
		SortFields: map[string]string{
			"createdAt": "created_at",
		},
		DefaultSort:   "createdAt",
		SearchColumns: []string{"message"},
	}
)
