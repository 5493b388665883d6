package validators

import "go.mongodb.org/mongo-driver/bson"

var DeskValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "building_id", "floor", "label"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},
			"building_id": bson.M{
				"bsonType": "long",
			},
			"floor": bson.M{
				"bsonType": []string{"int", "long"},
			},
			"label": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},
		},
	},
}
