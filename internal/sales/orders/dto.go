package orders

type ListSalesOrdersRequest struct {
	CustomerID *int64            `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Status     *SalesOrderStatus `json:"status,omitempty"`
	Limit      int               `json:"limit" validate:"gte=0,lte=500"`
	Offset     int               `json:"offset" validate:"gte=0"`
}
