package resource

import "sort"

// Kind names, as used in routes and on the command line.
const (
	KindUsers        = "users"
	KindPayments     = "payments"
	KindTransactions = "transactions"
	KindNotes        = "notes"
	KindPYQs         = "pyqs"
	KindBranches     = "branches"
	KindSubjects     = "subjects"
	KindSeniors      = "seniors"
	KindLostFound    = "lostfound"
	KindProducts     = "products"
)

var Users = Resource[User]{
	Kind: KindUsers,
	Path: "/users",
	Text: []func(User) string{
		func(u User) string { return u.Name },
		func(u User) string { return u.Email },
		func(u User) string { return u.Phone },
	},
	Exact: map[string]func(User) (string, bool){
		"college": refField(func(u User) *Ref { return u.College }),
		"branch":  refField(func(u User) *Ref { return u.Branch }),
		"year":    intField(func(u User) int { return u.Year }),
	},
	Min: map[string]func(User) (float64, bool){
		"min_rewards": floatPtrField(func(u User) *float64 { return u.Rewards }),
	},
	Flags: map[string]func(User) bool{
		"verified": func(u User) bool { return u.IsVerified },
	},
	Date: func(u User) string { return u.CreatedAt },
	Orderings: map[string]func(a, b User) int{
		"name":       byText(func(u User) string { return u.Name }),
		"email":      byText(func(u User) string { return u.Email }),
		"rewards":    byNumber(floatPtrField(func(u User) *float64 { return u.Rewards })),
		"created_at": byTime(func(u User) string { return u.CreatedAt }),
	},
	Columns: []string{"id", "name", "email", "college", "verified", "rewards", "created"},
	Row: func(u User) []string {
		return []string{u.ID, u.Name, u.Email, fmtRef(u.College), fmtBool(u.IsVerified), fmtFloat(u.Rewards), u.CreatedAt}
	},
}

var Payments = Resource[Payment]{
	Kind: KindPayments,
	Path: "/payments",
	Text: []func(Payment) string{
		refText(func(p Payment) *Ref { return p.User }),
		func(p Payment) string {
			if p.User == nil {
				return ""
			}
			return p.User.Email
		},
		func(p Payment) string { return p.Reference },
	},
	Exact: map[string]func(Payment) (string, bool){
		"status": stringField(func(p Payment) string { return p.Status }),
		"method": stringField(func(p Payment) string { return p.Method }),
	},
	Min: map[string]func(Payment) (float64, bool){
		"min_amount": floatPtrField(func(p Payment) *float64 { return p.Amount }),
	},
	Date: func(p Payment) string { return p.CreatedAt },
	Orderings: map[string]func(a, b Payment) int{
		"amount":     byNumber(floatPtrField(func(p Payment) *float64 { return p.Amount })),
		"status":     byText(func(p Payment) string { return p.Status }),
		"created_at": byTime(func(p Payment) string { return p.CreatedAt }),
	},
	Columns: []string{"id", "user", "amount", "status", "method", "reference", "created"},
	Row: func(p Payment) []string {
		return []string{p.ID, fmtRef(p.User), fmtFloat(p.Amount), p.Status, p.Method, p.Reference, p.CreatedAt}
	},
}

var Transactions = Resource[Transaction]{
	Kind: KindTransactions,
	Path: "/transactions",
	Text: []func(Transaction) string{
		refText(func(t Transaction) *Ref { return t.User }),
		func(t Transaction) string { return t.Reason },
	},
	Exact: map[string]func(Transaction) (string, bool){
		"type": stringField(func(t Transaction) string { return t.Type }),
	},
	Min: map[string]func(Transaction) (float64, bool){
		"min_points": floatPtrField(func(t Transaction) *float64 { return t.Points }),
	},
	Date: func(t Transaction) string { return t.CreatedAt },
	Orderings: map[string]func(a, b Transaction) int{
		"points":     byNumber(floatPtrField(func(t Transaction) *float64 { return t.Points })),
		"type":       byText(func(t Transaction) string { return t.Type }),
		"created_at": byTime(func(t Transaction) string { return t.CreatedAt }),
	},
	Columns: []string{"id", "user", "type", "points", "reason", "created"},
	Row: func(t Transaction) []string {
		return []string{t.ID, fmtRef(t.User), t.Type, fmtFloat(t.Points), t.Reason, t.CreatedAt}
	},
}

var Notes = Resource[Note]{
	Kind:          KindNotes,
	Path:          "/notes",
	CollegeScoped: true,
	CanApprove:    true,
	Text: []func(Note) string{
		func(n Note) string { return n.Title },
		refText(func(n Note) *Ref { return n.Owner }),
	},
	Exact: map[string]func(Note) (string, bool){
		"branch":   refField(func(n Note) *Ref { return n.Branch }),
		"subject":  refField(func(n Note) *Ref { return n.Subject }),
		"semester": intField(func(n Note) int { return n.Semester }),
	},
	Min: map[string]func(Note) (float64, bool){
		"min_views": intPtrField(func(n Note) *int { return n.Views }),
	},
	Flags: map[string]func(Note) bool{
		"approved": func(n Note) bool { return n.IsApproved },
	},
	Date: func(n Note) string { return n.CreatedAt },
	Orderings: map[string]func(a, b Note) int{
		"title":      byText(func(n Note) string { return n.Title }),
		"views":      byNumber(intPtrField(func(n Note) *int { return n.Views })),
		"approved":   byFlag(func(n Note) bool { return n.IsApproved }),
		"semester":   byInt(func(n Note) int { return n.Semester }),
		"created_at": byTime(func(n Note) string { return n.CreatedAt }),
	},
	Columns: []string{"id", "title", "owner", "subject", "semester", "views", "approved", "created"},
	Row: func(n Note) []string {
		return []string{
			n.ID, n.Title, fmtRef(n.Owner), fmtRef(n.Subject), fmtInt(n.Semester),
			fmtIntPtr(n.Views), fmtBool(n.IsApproved), n.CreatedAt,
		}
	},
}

var PYQs = Resource[PYQ]{
	Kind:          KindPYQs,
	Path:          "/pyqs",
	CollegeScoped: true,
	CanApprove:    true,
	Text: []func(PYQ) string{
		func(p PYQ) string { return p.Name },
		refText(func(p PYQ) *Ref { return p.Subject }),
	},
	Exact: map[string]func(PYQ) (string, bool){
		"branch":   refField(func(p PYQ) *Ref { return p.Branch }),
		"subject":  refField(func(p PYQ) *Ref { return p.Subject }),
		"year":     intField(func(p PYQ) int { return p.Year }),
		"semester": intField(func(p PYQ) int { return p.Semester }),
	},
	Flags: map[string]func(PYQ) bool{
		"solved":   func(p PYQ) bool { return p.Solved },
		"approved": func(p PYQ) bool { return p.IsApproved },
	},
	Date: func(p PYQ) string { return p.CreatedAt },
	Orderings: map[string]func(a, b PYQ) int{
		"name":       byText(func(p PYQ) string { return p.Name }),
		"year":       byInt(func(p PYQ) int { return p.Year }),
		"semester":   byInt(func(p PYQ) int { return p.Semester }),
		"approved":   byFlag(func(p PYQ) bool { return p.IsApproved }),
		"created_at": byTime(func(p PYQ) string { return p.CreatedAt }),
	},
	Columns: []string{"id", "name", "subject", "year", "semester", "solved", "approved", "created"},
	Row: func(p PYQ) []string {
		return []string{
			p.ID, p.Name, fmtRef(p.Subject), fmtInt(p.Year), fmtInt(p.Semester),
			fmtBool(p.Solved), fmtBool(p.IsApproved), p.CreatedAt,
		}
	},
}

var Branches = Resource[Branch]{
	Kind:          KindBranches,
	Path:          "/branches",
	CollegeScoped: true,
	Text: []func(Branch) string{
		func(b Branch) string { return b.Name },
		func(b Branch) string { return b.Code },
	},
	// "college" scopes the fetch of scoped kinds, so the name filter has its own param
	Exact: map[string]func(Branch) (string, bool){
		"college_name": refField(func(b Branch) *Ref { return b.College }),
	},
	Date: func(b Branch) string { return b.CreatedAt },
	Orderings: map[string]func(a, b Branch) int{
		"name":       byText(func(b Branch) string { return b.Name }),
		"code":       byText(func(b Branch) string { return b.Code }),
		"created_at": byTime(func(b Branch) string { return b.CreatedAt }),
	},
	Columns: []string{"id", "name", "code", "college", "created"},
	Row: func(b Branch) []string {
		return []string{b.ID, b.Name, b.Code, fmtRef(b.College), b.CreatedAt}
	},
}

var Subjects = Resource[Subject]{
	Kind:          KindSubjects,
	Path:          "/subjects",
	CollegeScoped: true,
	Text: []func(Subject) string{
		func(s Subject) string { return s.Name },
		func(s Subject) string { return s.Code },
	},
	Exact: map[string]func(Subject) (string, bool){
		"branch":   refField(func(s Subject) *Ref { return s.Branch }),
		"semester": intField(func(s Subject) int { return s.Semester }),
	},
	Date: func(s Subject) string { return s.CreatedAt },
	Orderings: map[string]func(a, b Subject) int{
		"name":       byText(func(s Subject) string { return s.Name }),
		"code":       byText(func(s Subject) string { return s.Code }),
		"semester":   byInt(func(s Subject) int { return s.Semester }),
		"created_at": byTime(func(s Subject) string { return s.CreatedAt }),
	},
	Columns: []string{"id", "name", "code", "branch", "semester", "created"},
	Row: func(s Subject) []string {
		return []string{s.ID, s.Name, s.Code, fmtRef(s.Branch), fmtInt(s.Semester), s.CreatedAt}
	},
}

var Seniors = Resource[Senior]{
	Kind:          KindSeniors,
	Path:          "/seniors",
	CollegeScoped: true,
	CanApprove:    true,
	Text: []func(Senior) string{
		func(s Senior) string { return s.Name },
		refText(func(s Senior) *Ref { return s.Branch }),
	},
	Exact: map[string]func(Senior) (string, bool){
		"branch": refField(func(s Senior) *Ref { return s.Branch }),
		"year":   intField(func(s Senior) int { return s.Year }),
	},
	Min: map[string]func(Senior) (float64, bool){
		"min_priority": intPtrField(func(s Senior) *int { return s.Priority }),
	},
	Flags: map[string]func(Senior) bool{
		"approved": func(s Senior) bool { return s.IsApproved },
	},
	Date: func(s Senior) string { return s.CreatedAt },
	Orderings: map[string]func(a, b Senior) int{
		"name":       byText(func(s Senior) string { return s.Name }),
		"year":       byInt(func(s Senior) int { return s.Year }),
		"priority":   byNumber(intPtrField(func(s Senior) *int { return s.Priority })),
		"approved":   byFlag(func(s Senior) bool { return s.IsApproved }),
		"created_at": byTime(func(s Senior) string { return s.CreatedAt }),
	},
	Columns: []string{"id", "name", "branch", "year", "priority", "approved", "created"},
	Row: func(s Senior) []string {
		return []string{
			s.ID, s.Name, fmtRef(s.Branch), fmtInt(s.Year), fmtIntPtr(s.Priority),
			fmtBool(s.IsApproved), s.CreatedAt,
		}
	},
}

var LostFoundItems = Resource[LostFound]{
	Kind:          KindLostFound,
	Path:          "/lostfound",
	CollegeScoped: true,
	Text: []func(LostFound) string{
		func(l LostFound) string { return l.Name },
		func(l LostFound) string { return l.Description },
		func(l LostFound) string { return l.Location },
	},
	Exact: map[string]func(LostFound) (string, bool){
		"status": stringField(func(l LostFound) string { return l.Status }),
	},
	Date: func(l LostFound) string { return l.CreatedAt },
	Orderings: map[string]func(a, b LostFound) int{
		"name":       byText(func(l LostFound) string { return l.Name }),
		"status":     byText(func(l LostFound) string { return l.Status }),
		"created_at": byTime(func(l LostFound) string { return l.CreatedAt }),
	},
	Columns: []string{"id", "name", "location", "status", "owner", "created"},
	Row: func(l LostFound) []string {
		return []string{l.ID, l.Name, l.Location, l.Status, fmtRef(l.Owner), l.CreatedAt}
	},
}

var Products = Resource[Product]{
	Kind:          KindProducts,
	Path:          "/products",
	CollegeScoped: true,
	CanApprove:    true,
	Text: []func(Product) string{
		func(p Product) string { return p.Name },
		refText(func(p Product) *Ref { return p.Seller }),
	},
	Min: map[string]func(Product) (float64, bool){
		"min_price": floatPtrField(func(p Product) *float64 { return p.Price }),
	},
	Flags: map[string]func(Product) bool{
		"available": func(p Product) bool { return p.IsAvailable },
		"approved":  func(p Product) bool { return p.IsApproved },
	},
	Date: func(p Product) string { return p.CreatedAt },
	Orderings: map[string]func(a, b Product) int{
		"name":       byText(func(p Product) string { return p.Name }),
		"price":      byNumber(floatPtrField(func(p Product) *float64 { return p.Price })),
		"approved":   byFlag(func(p Product) bool { return p.IsApproved }),
		"created_at": byTime(func(p Product) string { return p.CreatedAt }),
	},
	Columns: []string{"id", "name", "seller", "price", "available", "approved", "created"},
	Row: func(p Product) []string {
		return []string{
			p.ID, p.Name, fmtRef(p.Seller), fmtFloat(p.Price), fmtBool(p.IsAvailable),
			fmtBool(p.IsApproved), p.CreatedAt,
		}
	},
}

var endpoints = map[string]Endpoint{
	KindUsers:        Users,
	KindPayments:     Payments,
	KindTransactions: Transactions,
	KindNotes:        Notes,
	KindPYQs:         PYQs,
	KindBranches:     Branches,
	KindSubjects:     Subjects,
	KindSeniors:      Seniors,
	KindLostFound:    LostFoundItems,
	KindProducts:     Products,
}

// Lookup returns the endpoint of a kind.
func Lookup(kind string) (Endpoint, bool) {
	ep, ok := endpoints[kind]
	return ep, ok
}

// Kinds returns every kind name, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(endpoints))
	for k := range endpoints {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
