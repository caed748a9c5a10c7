package resource

// Ref is a reference to another upstream entity, embedded in a record.
// It is nil when the referenced entity was deleted.
type Ref struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type User struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
	College    *Ref     `json:"college"`
	Branch     *Ref     `json:"branch"`
	Year       int      `json:"year,omitempty"`
	IsVerified bool     `json:"isVerified"`
	Rewards    *float64 `json:"rewardPoints"`
	CreatedAt  string   `json:"createdAt"`
}

type Payment struct {
	ID        string   `json:"_id"`
	User      *Ref     `json:"user"`
	Amount    *float64 `json:"amount"`
	Status    string   `json:"status"` // pending | success | failed
	Method    string   `json:"method"`
	Reference string   `json:"orderId"`
	CreatedAt string   `json:"createdAt"`
}

type Transaction struct {
	ID        string   `json:"_id"`
	User      *Ref     `json:"user"`
	Type      string   `json:"type"` // credit | debit
	Points    *float64 `json:"points"`
	Reason    string   `json:"reason"`
	CreatedAt string   `json:"createdAt"`
}

type Note struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Owner      *Ref   `json:"owner"`
	College    *Ref   `json:"college"`
	Branch     *Ref   `json:"branch"`
	Subject    *Ref   `json:"subject"`
	Semester   int    `json:"semester,omitempty"`
	Views      *int   `json:"views"`
	FileURL    string `json:"fileUrl,omitempty"`
	IsApproved bool   `json:"isApproved"`
	CreatedAt  string `json:"createdAt"`
}

type PYQ struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Subject    *Ref   `json:"subject"`
	Branch     *Ref   `json:"branch"`
	College    *Ref   `json:"college"`
	Year       int    `json:"year,omitempty"`
	Semester   int    `json:"semester,omitempty"`
	Solved     bool   `json:"solved"`
	IsApproved bool   `json:"isApproved"`
	CreatedAt  string `json:"createdAt"`
}

type Branch struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	College   *Ref   `json:"college"`
	CreatedAt string `json:"createdAt"`
}

type Subject struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Branch    *Ref   `json:"branch"`
	Semester  int    `json:"semester,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type Senior struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Branch     *Ref   `json:"branch"`
	Year       int    `json:"year,omitempty"`
	Whatsapp   string `json:"whatsapp,omitempty"`
	Telegram   string `json:"telegram,omitempty"`
	Priority   *int   `json:"priority"`
	IsApproved bool   `json:"isApproved"`
	CreatedAt  string `json:"createdAt"`
}

type LostFound struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Status      string `json:"status"` // lost | found | claimed
	Owner       *Ref   `json:"owner"`
	CreatedAt   string `json:"createdAt"`
}

type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Seller      *Ref     `json:"seller"`
	IsAvailable bool     `json:"available"`
	IsApproved  bool     `json:"isApproved"`
	CreatedAt   string   `json:"createdAt"`
}
