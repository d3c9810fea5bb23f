package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyToken              = "token"
	KeyEmail              = "email"
	KeyUserID             = "userId"
	KeyCartID             = "cartId"
	KeyCartItemID         = "cartItemId"
	KeyOrderID            = "orderId"
	KeyOrderNumber        = "orderNumber"
	KeyOrderStatus        = "orderStatus"
	KeyProductID          = "productId"
	KeyProductName        = "productName"
	KeyProductStock       = "productStock"
	KeyCategoryID         = "categoryId"
	KeyQuantity           = "quantity"
	KeyTotal              = "total"
	KeyDbURL              = "dbUrl"
	KeyCacheKey           = "cacheKey"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyRequestProcessedAt = "requestProcessedAt"
)
