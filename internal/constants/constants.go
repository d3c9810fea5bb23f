package constants

const (
	AppTienda = "tienda"

	AudienceUser = "tienda-user"

	ScopeUser     = "tienda/user"
	ScopeCart     = "tienda/cart"
	ScopeOrder    = "tienda/order"
	ScopeProduct  = "tienda/product"
	ScopeCategory = "tienda/category"
)
