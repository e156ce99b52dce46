package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MetaStatusPendente is assigned to new metas when the client omits a status.
// Statuses are otherwise free strings; the status chart counts whatever is
// stored.
const MetaStatusPendente = "pendente"

// Meta represents a goal tracked in the metas collection
type Meta struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Titulo    string        `bson:"titulo" json:"titulo"`
	Descricao string        `bson:"descricao" json:"descricao"`
	Status    string        `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}
