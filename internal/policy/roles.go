package policy

import "github.com/primeo/api/internal/models"

// Resource type names used across the API.
const (
	ResourceProduct        = "product"
	ResourceCategory       = "category"
	ResourceOrder          = "order"
	ResourceShop           = "shop"
	ResourcePayment        = "payment"
	ResourceSupplier       = "supplier"
	ResourceSetting        = "setting"
	ResourceStock          = "stock"
	ResourcePromotion      = "promotion"
	ResourceMessage        = "message"
	ResourceNotification   = "notification"
	ResourceUser           = "user"
	ResourceStats          = "stats"
	ResourceQuote          = "quote"
	ResourceDelivery       = "delivery"
	ResourceRecurringOrder = "recurring_order"
	ResourceInvoice        = "invoice"
)

// AllResources lists every resource type a policy is registered for.
var AllResources = []string{
	ResourceProduct, ResourceCategory, ResourceOrder, ResourceShop,
	ResourcePayment, ResourceSupplier, ResourceSetting, ResourceStock,
	ResourcePromotion, ResourceMessage, ResourceNotification, ResourceUser,
	ResourceStats, ResourceQuote, ResourceDelivery, ResourceRecurringOrder,
	ResourceInvoice,
}

// roleProfiles is the authorization matrix, one profile per role. The switch in
// ProfileForRole keeps the mapping exhaustive: a new role without a profile is
// caught in tests over models.AllRoles.
var roleProfiles = map[models.Role]*Profile{
	models.RoleAdmin: NewProfile(models.RoleAdmin, PermissionSuperAdmin),

	models.RoleClient: NewProfile(models.RoleClient,
		"product:view", "product:list",
		"category:view", "category:list",
		"order:view", "order:list", "order:create",
		"shop:view", "shop:list", "shop:create", "shop:update",
		"payment:view", "payment:list",
		"promotion:view", "promotion:list",
		"message:*",
		"notification:view", "notification:list", "notification:update",
		"invoice:view", "invoice:list",
		"recurring_order:*",
		"quote:view", "quote:list", "quote:update",
	),

	models.RoleCommercial: NewProfile(models.RoleCommercial,
		"product:*", "category:*", "promotion:*", "quote:*", "shop:*",
		"order:view", "order:list", "order:create", "order:update",
		"supplier:view", "supplier:list",
		"message:*", "notification:view", "notification:list", "notification:update",
		"stats:view",
	),

	models.RoleFinance: NewProfile(models.RoleFinance,
		"payment:*", "invoice:*",
		"order:view", "order:list",
		"shop:view", "shop:list",
		"message:*", "notification:view", "notification:list", "notification:update",
		"stats:view",
	),

	models.RoleLivreur: NewProfile(models.RoleLivreur,
		"delivery:*",
		"order:view", "order:list", "order:update",
		"shop:view", "shop:list",
		"message:*", "notification:view", "notification:list", "notification:update",
	),

	models.RolePreparateur: NewProfile(models.RolePreparateur,
		"order:view", "order:list", "order:update",
		"product:view", "product:list",
		"stock:view", "stock:list",
		"message:*", "notification:view", "notification:list", "notification:update",
	),

	models.RoleStock: NewProfile(models.RoleStock,
		"product:view", "product:list", "product:update",
		"stock:*", "supplier:*",
		"category:view", "category:list",
		"message:*", "notification:view", "notification:list", "notification:update",
	),
}

// ProfileForRole returns the permission profile of a role, nil for unknown roles.
func ProfileForRole(role models.Role) *Profile {
	return roleProfiles[role]
}

// NewDomainGate builds the Gate with the standard profile-backed policy
// registered for every resource type.
func NewDomainGate() *Gate {
	g := NewGate()
	for _, res := range AllResources {
		g.Register(res, NewPermissionPolicy(res))
	}
	return g
}
