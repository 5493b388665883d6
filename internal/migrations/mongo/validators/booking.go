package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"desk_id",
			"user_id",
			"date_from",
			"date_to",
			"created_at",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"desk_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"user_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"date_from": bson.M{
				"bsonType": "date",
			},

			"date_to": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
	"$expr": bson.M{
		"$lte": []string{"$date_from", "$date_to"},
	},
}
