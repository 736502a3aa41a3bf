package domain

// Tables lists every model migrated at startup.
var Tables = []interface{}{
	&User{},
	&Category{},
	&Product{},
	&Order{},
	&OrderItem{},
	&Notification{},
	&Review{},
	&Settings{},
}
