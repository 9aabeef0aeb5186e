package model

// UserRecord ID 為空字串代表未登入
type UserRecord struct {
	ID       string      `json:"_id"`
	Username string      `json:"username"`
	Cart     []CartItem  `json:"cart"`
	Orders   []OrderItem `json:"orders"`
}

func EmptyUser() UserRecord {
	return UserRecord{
		Cart:   []CartItem{},
		Orders: []OrderItem{},
	}
}

func (u UserRecord) SignedIn() bool {
	return u.ID != ""
}

func (u UserRecord) Clone() UserRecord {
	c := u
	c.Cart = CloneCart(u.Cart)
	c.Orders = CloneOrders(u.Orders)
	return c
}
